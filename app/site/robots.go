package site

import "strings"

// aiCrawlers are explicitly invited to index the raw data tree.
var aiCrawlers = []string{
	"GPTBot",
	"ChatGPT-User",
	"PerplexityBot",
	"YouBot",
	"Claude-Web",
	"CCBot",
	"FacebookBot",
	"anthropic-ai",
}

// Robots renders robots.txt: the schemas tree and the AI sitemap are
// open to everyone, known AI crawlers get an explicit allow block, and
// the pages sitemap is referenced for the rendered site.
func Robots(o Origin) []byte {
	lines := []string{
		"User-agent: *",
		"Allow: /schemas/",
		"Allow: /ai-sitemap.xml",
		"Sitemap: " + o.RawBase() + "/ai-sitemap.xml",
		"",
		"# Explicitly invite AI crawlers",
	}

	for _, agent := range aiCrawlers {
		lines = append(lines, "User-agent: "+agent, "Allow: /", "")
	}

	lines = append(lines,
		"# Generic fallback and sitemap for the rendered pages site",
		"User-agent: *",
		"Allow: /",
		"Sitemap: "+o.PagesBase()+"/sitemap.xml",
		"",
	)

	return []byte(strings.Join(lines, "\n"))
}
