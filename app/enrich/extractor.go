package enrich

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/go-shiori/go-readability"
)

// Page is the readable part of a fetched web page.
type Page struct {
	Title    string
	Excerpt  string
	Text     string
	Author   string
	ImageURL string
	URL      string
}

// Extractor pulls the readable article out of an HTML page.
type Extractor struct {
	parser readability.Parser
}

// NewExtractor creates new Extractor.
func NewExtractor(debug bool) Extractor {
	svc := Extractor{parser: readability.NewParser()}
	svc.parser.Debug = debug

	return svc
}

// Extract extracts the readable article from an HTML page.
func (e Extractor) Extract(rd io.Reader) (Page, error) {
	doc, err := readability.FromReader(rd, nil)
	if err != nil {
		return Page{}, fmt.Errorf("parse html: %w", err)
	}

	return Page{
		Title:    doc.Title,
		Excerpt:  doc.Excerpt,
		Text:     e.sanitize(doc.TextContent),
		Author:   doc.Byline,
		ImageURL: doc.Image,
	}, nil
}

var spaceRe = regexp.MustCompile(`\s+`)

func (e Extractor) sanitize(s string) string {
	s = strings.ReplaceAll(s, "\t", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	// nbsp
	s = strings.ReplaceAll(s, "\u00a0", " ")

	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}
