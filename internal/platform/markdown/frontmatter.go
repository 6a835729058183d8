package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	fence      = "---\n"
	closeFence = "\n---\n"
)

// Decode fills meta from the YAML frontmatter of note and returns the body.
// Notes without frontmatter leave meta untouched.
func Decode(note string, meta any) (string, error) {
	if !strings.HasPrefix(note, fence) {
		return note, nil
	}
	rest := note[len(fence):]
	idx := strings.Index(rest, closeFence)
	if idx < 0 {
		return "", fmt.Errorf("frontmatter: missing closing fence")
	}
	if err := yaml.Unmarshal([]byte(rest[:idx]), meta); err != nil {
		return "", fmt.Errorf("frontmatter: %w", err)
	}
	return rest[idx+len(closeFence):], nil
}

// Encode renders meta as YAML frontmatter followed by a blank line and body.
func Encode(meta any, body string) (string, error) {
	raw, err := yaml.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("frontmatter: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString(fence)
	buf.Write(raw)
	buf.WriteString(fence)
	buf.WriteString("\n")
	buf.WriteString(strings.TrimLeft(body, "\n"))
	return buf.String(), nil
}
