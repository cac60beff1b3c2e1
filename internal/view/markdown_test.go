package view

import (
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func init() {
	// Plain output so assertions see no escape sequences.
	color.NoColor = true
}

func TestLinkAllowed(t *testing.T) {
	tests := []struct {
		dest string
		want bool
	}{
		{"https://example.com", true},
		{"http://example.com/path?q=1", true},
		{"HTTPS://EXAMPLE.COM", true},
		{"  https://padded.example  ", true},
		{"javascript:alert(1)", false},
		{"data:text/html,<script>", false},
		{"vbscript:msgbox", false},
		{"ftp://example.com", false},
		{"//example.com", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.dest, func(t *testing.T) {
			assert.Equal(t, tt.want, LinkAllowed(tt.dest))
		})
	}
}

func TestRenderMarkdownLinks(t *testing.T) {
	got := RenderMarkdown("see [docs](https://example.com/docs)")
	assert.Contains(t, got, "docs")
	assert.Contains(t, got, "https://example.com/docs")

	// Disallowed schemes keep the label but drop the destination entirely.
	got = RenderMarkdown("[click](javascript:alert(1))")
	assert.Contains(t, got, "click")
	assert.NotContains(t, got, "javascript")
	assert.NotContains(t, got, "alert")
}

func TestRenderMarkdownAutoLinks(t *testing.T) {
	got := RenderMarkdown("visit <https://example.com> now")
	assert.Contains(t, got, "https://example.com")
}

func TestRenderMarkdownInlineStyles(t *testing.T) {
	got := RenderMarkdown("**bold** and *italic* and `code`")
	assert.Contains(t, got, "bold")
	assert.Contains(t, got, "italic")
	assert.Contains(t, got, "code")
	assert.NotContains(t, got, "**")
	assert.NotContains(t, got, "`")
}

func TestRenderMarkdownLists(t *testing.T) {
	got := RenderMarkdown("- first\n- second\n\n1. one\n2. two")
	assert.Contains(t, got, "- first")
	assert.Contains(t, got, "- second")
	assert.Contains(t, got, "1. one")
	assert.Contains(t, got, "2. two")
}

func TestRenderMarkdownSkipsRawHTML(t *testing.T) {
	got := RenderMarkdown("before\n\n<script>alert(1)</script>\n\nafter")
	assert.Contains(t, got, "before")
	assert.Contains(t, got, "after")
	assert.NotContains(t, got, "<script>")

	got = RenderMarkdown("text with <b>inline html</b> tags")
	assert.NotContains(t, got, "<b>")
}

func TestRenderMarkdownCodeBlock(t *testing.T) {
	got := RenderMarkdown("```\nfmt.Println(1)\n```")
	assert.Contains(t, got, "fmt.Println(1)")
	assert.NotContains(t, got, "```")
}
