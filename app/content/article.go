// Package content contains the help-article model, the markdown file
// codec and the corpus loader with its validation and dedup rules.
package content

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ArticleTypeHelp is the only article type the corpus carries today.
const ArticleTypeHelp = "Help Article"

// Article is a single logical help article, parsed from a markdown file
// with an optional frontmatter block.
type Article struct {
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	ArticleType string    `json:"article_type,omitempty"`
	Keywords    []string  `json:"keywords,omitempty"`
	SourceURL   string    `json:"url,omitempty"`
	PublishedAt time.Time `json:"published_date,omitempty"`
	Body        string    `json:"body"`

	// provenance, not part of the frontmatter
	Path string `json:"path,omitempty"`
	Part int    `json:"part,omitempty"`
}

// dateLayouts are tried in order when parsing published_date.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
}

// ParseDate parses a frontmatter date against the accepted layouts.
// Returns zero time if the value doesn't match any of them.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported date format: %q", s)
}

// Render writes the article back in the canonical form: frontmatter with
// fields in a fixed order, empty ones omitted, blank line, body.
func (a Article) Render() []byte {
	buf := &bytes.Buffer{}

	buf.WriteString("---\n")
	if a.Title != "" {
		fmt.Fprintf(buf, "title: %s\n", yamlValue(a.Title))
	}
	fmt.Fprintf(buf, "slug: %s\n", yamlValue(a.Slug))
	if a.ArticleType != "" {
		fmt.Fprintf(buf, "article_type: %s\n", yamlValue(a.ArticleType))
	}
	if len(a.Keywords) > 0 {
		fmt.Fprintf(buf, "keywords: %s\n", yamlValue(strings.Join(a.Keywords, ", ")))
	}
	if a.SourceURL != "" {
		fmt.Fprintf(buf, "url: %s\n", yamlValue(a.SourceURL))
	}
	if !a.PublishedAt.IsZero() {
		fmt.Fprintf(buf, "published_date: %s\n", a.PublishedAt.Format(time.RFC3339))
	}
	buf.WriteString("---\n\n")
	buf.WriteString(a.Body)

	return buf.Bytes()
}

// yamlValue writes s as a frontmatter scalar, quoting it whenever a
// plain YAML scalar would not survive a round trip, e.g. a title with
// a colon in it.
func yamlValue(s string) string {
	if s == "" {
		return `""`
	}

	plain := s == strings.TrimSpace(s) &&
		!strings.Contains(s, ": ") && !strings.HasSuffix(s, ":") &&
		!strings.Contains(s, " #") &&
		!strings.ContainsAny(s[:1], "-?:,[]{}#&*!|>'\"%@`")
	if plain {
		return s
	}

	return strconv.Quote(s)
}

// Completeness counts filled metadata fields, it ranks duplicate exports
// of the same slug against each other.
func (a Article) Completeness() int {
	count := 0
	if a.Title != "" {
		count++
	}
	if a.Slug != "" {
		count++
	}
	if a.ArticleType != "" {
		count++
	}
	if len(a.Keywords) > 0 {
		count++
	}
	if a.SourceURL != "" {
		count++
	}
	if !a.PublishedAt.IsZero() {
		count++
	}
	return count
}

// Excerpt returns the first paragraph of the body, trimmed to at most
// n runes.
func (a Article) Excerpt(n int) string {
	body := strings.TrimSpace(a.Body)
	if idx := strings.Index(body, "\n\n"); idx > 0 {
		body = body[:idx]
	}
	body = strings.Join(strings.Fields(body), " ")

	runes := []rune(body)
	if len(runes) <= n {
		return body
	}
	return strings.TrimSpace(string(runes[:n])) + "…"
}
