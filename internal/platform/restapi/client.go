// Package restapi is a thin resty wrapper for a PostgREST-style backend.
package restapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client issues JSON requests against the remote store.
type Client struct {
	http *resty.Client
}

type Options struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	Retries int
}

func New(opts Options) *Client {
	c := resty.New().
		SetBaseURL(opts.BaseURL).
		SetTimeout(opts.Timeout).
		SetRetryCount(opts.Retries).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json")
	if opts.APIKey != "" {
		c.SetHeader("apikey", opts.APIKey).SetAuthToken(opts.APIKey)
	}
	return &Client{http: c}
}

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, e.Body)
}

func (c *Client) Get(ctx context.Context, path string, query map[string]string, out any) error {
	req := c.http.R().SetContext(ctx).SetQueryParams(query).SetResult(out)
	return check(req.Get(path))
}

// Insert posts body and asks the server to echo the stored representation.
func (c *Client) Insert(ctx context.Context, path string, body, out any) error {
	req := c.http.R().SetContext(ctx).
		SetHeader("Prefer", "return=representation").
		SetBody(body).
		SetResult(out)
	return check(req.Post(path))
}

// Patch applies a partial update to rows matched by query.
func (c *Client) Patch(ctx context.Context, path string, query map[string]string, body, out any) error {
	req := c.http.R().SetContext(ctx).
		SetHeader("Prefer", "return=representation").
		SetQueryParams(query).
		SetBody(body).
		SetResult(out)
	return check(req.Patch(path))
}

// RPC invokes a server-side function.
func (c *Client) RPC(ctx context.Context, name string, body, out any) error {
	req := c.http.R().SetContext(ctx).SetBody(body).SetResult(out)
	return check(req.Post("/rpc/" + name))
}

func check(resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		return &StatusError{
			Method: resp.Request.Method,
			Path:   resp.Request.URL,
			Status: resp.StatusCode(),
			Body:   resp.String(),
		}
	}
	return nil
}

// Eq builds a PostgREST equality filter.
func Eq(v string) string { return "eq." + v }

func Gte(v string) string { return "gte." + v }

func Lte(v string) string { return "lte." + v }

// Between builds an inclusive range filter for the "and" parameter.
func Between(column, from, to string) string {
	return fmt.Sprintf("(%s.gte.%s,%s.lte.%s)", column, from, column, to)
}
