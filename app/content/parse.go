package content

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Severity tells whether an issue breaks corpus invariants or is
// merely worth a look.
type Severity string

// Possible severities.
const (
	SeverityError Severity = "error"
	SeverityWarn  Severity = "warn"
)

// Issue is a single content-integrity finding. Parsing and validation
// never fail a whole file, malformed pieces degrade into issues.
type Issue struct {
	Path     string   `json:"path"`
	Part     int      `json:"part"`
	Severity Severity `json:"severity"`
	Rule     string   `json:"rule"`
	Msg      string   `json:"msg"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s[%d]: %s: %s: %s", i.Path, i.Part, i.Severity, i.Rule, i.Msg)
}

// separatorRe matches the token that concatenates several logical
// articles within one exported file. The suffix after the dash is
// opaque and ignored.
var separatorRe = regexp.MustCompile(`(?m)^<\|RELATED_DOC_SEP-[^|]*\|>\s*$`)

const utf8BOM = "\ufeff"

// ParseFile parses a markdown export into its logical articles. A file
// may hold a single article or several ones glued with the separator
// token; each segment carries an optional frontmatter block.
func ParseFile(path string, data []byte) ([]Article, []Issue) {
	text := strings.TrimPrefix(string(data), utf8BOM)
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var (
		articles []Article
		issues   []Issue
	)

	for part, segment := range separatorRe.Split(text, -1) {
		segment = strings.TrimLeft(segment, "\n")
		if strings.TrimSpace(segment) == "" {
			continue
		}

		article, segIssues := parseSegment(path, part, segment)
		articles = append(articles, article)
		issues = append(issues, segIssues...)
	}

	return articles, issues
}

func parseSegment(path string, part int, segment string) (Article, []Issue) {
	article := Article{Path: path, Part: part}

	fm, body, issues := splitFrontmatter(path, part, segment)
	article.Body = strings.TrimSpace(body)

	if fm == "" {
		return article, issues
	}

	fields := map[string]string{}
	if err := yaml.Unmarshal([]byte(fm), &fields); err != nil {
		issues = append(issues, Issue{
			Path: path, Part: part, Severity: SeverityError,
			Rule: "frontmatter-yaml",
			Msg:  fmt.Sprintf("unmarshal frontmatter: %v", err),
		})
		return article, issues
	}

	for key, val := range fields {
		val = strings.TrimSpace(val)
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "title":
			article.Title = val
		case "slug":
			article.Slug = val
		case "article_type":
			article.ArticleType = val
		case "keywords":
			article.Keywords = splitKeywords(val)
		case "url":
			article.SourceURL = val
		case "published_date":
			ts, err := ParseDate(val)
			if err != nil {
				issues = append(issues, Issue{
					Path: path, Part: part, Severity: SeverityWarn,
					Rule: "published-date",
					Msg:  err.Error(),
				})
				continue
			}
			article.PublishedAt = ts
		}
	}

	return article, issues
}

// splitFrontmatter cuts the leading frontmatter fence off the segment.
// An unterminated fence degrades the whole segment to body.
func splitFrontmatter(path string, part int, segment string) (fm, body string, issues []Issue) {
	lines := strings.Split(segment, "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "---" {
		return "", segment, nil
	}

	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			return strings.Join(lines[1:i], "\n"), strings.Join(lines[i+1:], "\n"), nil
		}
	}

	return "", segment, []Issue{{
		Path: path, Part: part, Severity: SeverityError,
		Rule: "frontmatter-fence",
		Msg:  "frontmatter fence is not terminated",
	}}
}

func splitKeywords(s string) []string {
	var result []string
	for _, kw := range strings.Split(s, ",") {
		if kw = strings.TrimSpace(kw); kw != "" {
			result = append(result, kw)
		}
	}
	return result
}
