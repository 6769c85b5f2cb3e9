package content

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, data string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "help-articles/bail.md",
		"---\ntitle: Bail\nslug: bail\n---\n\nbail body\n")
	writeFile(t, dir, "help-articles/pack.md",
		"---\ntitle: One\nslug: one\n---\n\none body\n"+
			"<|RELATED_DOC_SEP-abc|>\n"+
			"---\ntitle: Two\nslug: two\n---\n\ntwo body\n")
	writeFile(t, dir, ".hidden/skipped.md", "---\nslug: nope\n---\n\nskipped")
	writeFile(t, dir, "notes.txt", "not markdown")

	corpus, err := Load(dir)
	require.NoError(t, err)

	slugs := lo.Map(corpus.Articles, func(a Article, _ int) string { return a.Slug })
	assert.ElementsMatch(t, []string{"bail", "one", "two"}, slugs)
	assert.Empty(t, corpus.Errors())
}

func TestValidate(t *testing.T) {
	articles := []Article{
		{Path: "a.md", Title: "No Slug", Body: "body"},                        // frontmatter without slug
		{Path: "b.md", Slug: "Bad Slug", Title: "Bad", Body: "body"},          // not slugified
		{Path: "c.md", Slug: "empty-body", Title: "Empty"},                    // empty body
		{Path: "d.md", Slug: "bad-url", Title: "URL", SourceURL: "::", Body: "body"}, // broken url
		{Path: "e.md", Slug: "dup", Title: "Dup 1", Body: "body"},
		{Path: "f.md", Slug: "dup", Title: "Dup 2", Body: "body"},
	}

	issues := Validate(articles)
	rules := lo.Map(issues, func(i Issue, _ int) string { return i.Rule })

	assert.Contains(t, rules, "slug-required")
	assert.Contains(t, rules, "slug-form")
	assert.Contains(t, rules, "body-empty")
	assert.Contains(t, rules, "url-invalid")
	assert.Contains(t, rules, "slug-duplicate")

	dup, ok := lo.Find(issues, func(i Issue) bool { return i.Rule == "slug-duplicate" })
	require.True(t, ok)
	assert.Equal(t, SeverityWarn, dup.Severity)
}

func TestResolve_DuplicateSlugs(t *testing.T) {
	full := Article{
		Path: "full.md", Slug: "dup", Title: "Full", ArticleType: ArticleTypeHelp,
		Keywords: []string{"k"}, SourceURL: "https://e.com", Body: "full body",
	}
	truncated := Article{Path: "trunc.md", Slug: "dup", Body: "short body"}

	corpus := Resolve(Corpus{Articles: []Article{truncated, full}})
	require.Len(t, corpus.Articles, 1)
	assert.Equal(t, "full.md", corpus.Articles[0].Path)

	shadowed, ok := lo.Find(corpus.Issues, func(i Issue) bool { return i.Rule == "slug-shadowed" })
	require.True(t, ok)
	assert.Equal(t, "trunc.md", shadowed.Path)
	assert.Equal(t, SeverityWarn, shadowed.Severity)
}

func TestResolve_TieBreaks(t *testing.T) {
	older := Article{Path: "a.md", Slug: "dup", Title: "Older", Body: "b",
		PublishedAt: mustDate(t, "2023-01-01")}
	newer := Article{Path: "z.md", Slug: "dup", Title: "Newer", Body: "b",
		PublishedAt: mustDate(t, "2024-01-01")}

	corpus := Resolve(Corpus{Articles: []Article{older, newer}})
	require.Len(t, corpus.Articles, 1)
	assert.Equal(t, "Newer", corpus.Articles[0].Title)

	// equal completeness and date: smallest path wins
	first := Article{Path: "a.md", Slug: "tie", Title: "A", Body: "b"}
	second := Article{Path: "b.md", Slug: "tie", Title: "B", Body: "b"}
	corpus = Resolve(Corpus{Articles: []Article{second, first}})
	require.Len(t, corpus.Articles, 1)
	assert.Equal(t, "a.md", corpus.Articles[0].Path)
}

func TestResolve_AssignsMissingSlugs(t *testing.T) {
	corpus := Resolve(Corpus{Articles: []Article{
		{Path: "x.md", Title: "From The Title", Body: "b"},
		{Path: "dir/file-name.md", Body: "b"},
		{Path: "???.md", Body: "digest me"},
	}})
	require.Len(t, corpus.Articles, 3)

	assert.Equal(t, "from-the-title", corpus.Articles[0].Slug)
	assert.Equal(t, "file-name", corpus.Articles[1].Slug)
	assert.Regexp(t, `^item-[0-9a-f]{12}$`, corpus.Articles[2].Slug)
}

func TestGuessCategory(t *testing.T) {
	tbl := []struct {
		article Article
		want    string
	}{
		{Article{Title: "DUI checkpoints explained"}, "DUI & DMV"},
		{Article{Title: "What counts as personal injury"}, "Personal Injury"},
		{Article{Title: "Posting bail"}, "Bail"},
		{Article{Title: "Anything else", Keywords: []string{"expungement"}}, "Expungement"},
		{Article{Title: "Plain article"}, "General"},
	}
	for _, tt := range tbl {
		assert.Equal(t, tt.want, GuessCategory(tt.article), tt.article.Title)
	}
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := ParseDate(s)
	require.NoError(t, err)
	return ts
}
