package site

import (
	"html/template"
	"strings"
)

// RenderMarkdown converts the article body into HTML. The converter is
// deliberately minimal and escape-first: headings, list items and blank
// lines, everything else becomes an escaped paragraph. Raw HTML in the
// source never passes through.
func RenderMarkdown(body string) template.HTML {
	var sb strings.Builder

	for _, line := range strings.Split(body, "\n") {
		switch {
		case strings.HasPrefix(line, "## "):
			sb.WriteString("<h2>" + template.HTMLEscapeString(line[3:]) + "</h2>")
		case strings.HasPrefix(line, "# "):
			sb.WriteString("<h1>" + template.HTMLEscapeString(line[2:]) + "</h1>")
		case strings.HasPrefix(line, "- "), strings.HasPrefix(line, "* "):
			sb.WriteString("<p>• " + template.HTMLEscapeString(line[2:]) + "</p>")
		case strings.TrimSpace(line) == "":
			sb.WriteString("<br/>")
		default:
			sb.WriteString("<p>" + template.HTMLEscapeString(line) + "</p>")
		}
	}

	//nolint:gosec // every line above is escaped before being wrapped
	return template.HTML(sb.String())
}
