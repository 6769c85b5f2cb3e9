package site

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderMarkdown(t *testing.T) {
	body := "# Title\n\n## Section\nSome text\n- first\n* second"
	got := string(RenderMarkdown(body))

	assert.Contains(t, got, "<h1>Title</h1>")
	assert.Contains(t, got, "<h2>Section</h2>")
	assert.Contains(t, got, "<p>Some text</p>")
	assert.Contains(t, got, "<p>• first</p>")
	assert.Contains(t, got, "<p>• second</p>")
	assert.Contains(t, got, "<br/>")
}

func TestRenderMarkdown_EscapesHTML(t *testing.T) {
	got := string(RenderMarkdown("# <script>alert(1)</script>\n<b>bold</b>"))

	assert.NotContains(t, got, "<script>")
	assert.NotContains(t, got, "<b>")
	assert.Contains(t, got, "&lt;script&gt;")
}
