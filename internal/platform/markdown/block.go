package markdown

import "strings"

// Block is a generated region of a note delimited by HTML comment markers.
// Text outside the markers belongs to the user and is preserved.
type Block struct {
	Name string
}

func (b Block) start() string { return "<!-- " + b.Name + ":start -->" }
func (b Block) end() string   { return "<!-- " + b.Name + ":end -->" }

// Replace swaps the block's content in body, appending the block when body
// does not contain it yet.
func (b Block) Replace(body, content string) string {
	block := b.start() + "\n" + strings.TrimRight(content, "\n") + "\n" + b.end()
	if from, to, ok := b.bounds(body); ok {
		return body[:from] + block + body[to:]
	}
	switch {
	case strings.TrimSpace(body) == "":
		return block + "\n"
	case strings.HasSuffix(body, "\n"):
		return body + "\n" + block + "\n"
	default:
		return body + "\n\n" + block + "\n"
	}
}

// Extract returns the content between the markers.
func (b Block) Extract(body string) (string, bool) {
	from, to, ok := b.bounds(body)
	if !ok {
		return "", false
	}
	inner := body[from+len(b.start()) : to-len(b.end())]
	return strings.Trim(inner, "\n"), true
}

func (b Block) bounds(body string) (int, int, bool) {
	from := strings.Index(body, b.start())
	if from < 0 {
		return 0, 0, false
	}
	rel := strings.Index(body[from:], b.end())
	if rel < 0 {
		return 0, 0, false
	}
	return from, from + rel + len(b.end()), true
}
