package markdown_test

import (
	"strings"
	"testing"

	"commutecast/internal/platform/markdown"
)

type noteMeta struct {
	ID      string `yaml:"id"`
	Minutes int    `yaml:"minutes"`
}

func TestFrontmatterRoundTrip(t *testing.T) {
	t.Parallel()
	note, err := markdown.Encode(noteMeta{ID: "s1", Minutes: 12}, "# Title\n")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.HasPrefix(note, "---\nid: s1\nminutes: 12\n---\n\n# Title") {
		t.Fatalf("unexpected note:\n%s", note)
	}
	var meta noteMeta
	body, err := markdown.Decode(note, &meta)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if meta.ID != "s1" || meta.Minutes != 12 || !strings.HasPrefix(body, "\n# Title") {
		t.Fatalf("unexpected decode: %+v %q", meta, body)
	}
}

func TestDecodeWithoutFrontmatter(t *testing.T) {
	t.Parallel()
	meta := noteMeta{ID: "keep"}
	body, err := markdown.Decode("plain text", &meta)
	if err != nil || body != "plain text" || meta.ID != "keep" {
		t.Fatalf("unexpected result %q %+v %v", body, meta, err)
	}
	if _, err := markdown.Decode("---\nid: x\nno closing", &meta); err == nil {
		t.Fatalf("expected missing fence error")
	}
}

func TestBlockReplaceKeepsUserText(t *testing.T) {
	t.Parallel()
	b := markdown.Block{Name: "sessions"}

	first := b.Replace("# Day\n\nnotes by hand\n", "- one")
	if !strings.HasPrefix(first, "# Day\n\nnotes by hand\n\n<!-- sessions:start -->\n- one\n<!-- sessions:end -->") {
		t.Fatalf("unexpected append:\n%s", first)
	}
	second := b.Replace(first+"trailing\n", "- one\n- two\n")
	if !strings.Contains(second, "notes by hand") || !strings.HasSuffix(second, "<!-- sessions:end -->\ntrailing\n") {
		t.Fatalf("user text lost:\n%s", second)
	}
	got, ok := b.Extract(second)
	if !ok || got != "- one\n- two" {
		t.Fatalf("extract = %q, %v", got, ok)
	}
	if out := b.Replace("", "- x"); out != "<!-- sessions:start -->\n- x\n<!-- sessions:end -->\n" {
		t.Fatalf("unexpected empty-body block %q", out)
	}
}
