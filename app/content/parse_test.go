package content

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFile_SingleArticle(t *testing.T) {
	data := []byte("---\n" +
		"title: How Bail Works\n" +
		"slug: how-bail-works\n" +
		"article_type: Help Article\n" +
		"keywords: bail, bail bonds , pretrial\n" +
		"url: https://example.com/bail\n" +
		"published_date: 2024-03-01\n" +
		"---\n\n" +
		"Bail is a deposit the court holds.\n")

	articles, issues := ParseFile("help/how-bail-works.md", data)
	require.Len(t, articles, 1)
	assert.Empty(t, issues)

	a := articles[0]
	assert.Equal(t, "How Bail Works", a.Title)
	assert.Equal(t, "how-bail-works", a.Slug)
	assert.Equal(t, ArticleTypeHelp, a.ArticleType)
	assert.Equal(t, []string{"bail", "bail bonds", "pretrial"}, a.Keywords)
	assert.Equal(t, "https://example.com/bail", a.SourceURL)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), a.PublishedAt)
	assert.Equal(t, "Bail is a deposit the court holds.", a.Body)
	assert.Equal(t, "help/how-bail-works.md", a.Path)
}

func TestParseFile_SeparatorToken(t *testing.T) {
	data := []byte("---\nslug: first\ntitle: First\n---\n\nfirst body\n" +
		"<|RELATED_DOC_SEP-9f3ac2|>\n" +
		"---\nslug: second\ntitle: Second\n---\n\nsecond body\n")

	articles, issues := ParseFile("pack.md", data)
	require.Len(t, articles, 2)
	assert.Empty(t, issues)

	assert.Equal(t, "first", articles[0].Slug)
	assert.Equal(t, 0, articles[0].Part)
	assert.Equal(t, "second", articles[1].Slug)
	assert.Equal(t, 1, articles[1].Part)
	assert.Equal(t, "second body", articles[1].Body)
}

func TestParseFile_NoFrontmatter(t *testing.T) {
	articles, issues := ParseFile("plain.md", []byte("just a body, no metadata"))
	require.Len(t, articles, 1)
	assert.Empty(t, issues)
	assert.Empty(t, articles[0].Slug)
	assert.Equal(t, "just a body, no metadata", articles[0].Body)
}

func TestParseFile_UnterminatedFence(t *testing.T) {
	articles, issues := ParseFile("broken.md", []byte("---\ntitle: Broken\nslug: broken\n\nbody text"))
	require.Len(t, articles, 1)
	require.Len(t, issues, 1)

	assert.Equal(t, "frontmatter-fence", issues[0].Rule)
	assert.Equal(t, SeverityError, issues[0].Severity)
	// whole file degrades to body
	assert.Empty(t, articles[0].Slug)
	assert.Contains(t, articles[0].Body, "title: Broken")
}

func TestParseFile_BOMAndCRLF(t *testing.T) {
	data := []byte("\ufeff---\r\nslug: crlf-article\r\ntitle: CRLF\r\n---\r\n\r\nwindows body\r\n")
	articles, issues := ParseFile("crlf.md", data)
	require.Len(t, articles, 1)
	assert.Empty(t, issues)
	assert.Equal(t, "crlf-article", articles[0].Slug)
	assert.Equal(t, "windows body", articles[0].Body)
}

func TestParseFile_Empty(t *testing.T) {
	articles, issues := ParseFile("empty.md", nil)
	assert.Empty(t, articles)
	assert.Empty(t, issues)
}

func TestParseFile_BadDate(t *testing.T) {
	data := []byte("---\nslug: odd-date\npublished_date: someday\n---\n\nbody")
	articles, issues := ParseFile("odd.md", data)
	require.Len(t, articles, 1)
	require.Len(t, issues, 1)
	assert.Equal(t, "published-date", issues[0].Rule)
	assert.Equal(t, SeverityWarn, issues[0].Severity)
	assert.True(t, articles[0].PublishedAt.IsZero())
}

func TestParseDate_Layouts(t *testing.T) {
	tbl := []struct {
		in   string
		want time.Time
	}{
		{"2024-03-01T15:04:05Z", time.Date(2024, 3, 1, 15, 4, 5, 0, time.UTC)},
		{"2024-03-01 15:04:05", time.Date(2024, 3, 1, 15, 4, 5, 0, time.UTC)},
		{"2024-03-01", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"03/01/2024", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"", time.Time{}},
	}
	for _, tt := range tbl {
		ts, err := ParseDate(tt.in)
		require.NoError(t, err, tt.in)
		assert.True(t, tt.want.Equal(ts), tt.in)
	}

	_, err := ParseDate("first of never")
	assert.Error(t, err)
}

func TestArticle_RenderRoundTrip(t *testing.T) {
	a := Article{
		Title:       "Expungement Basics",
		Slug:        "expungement-basics",
		ArticleType: ArticleTypeHelp,
		Keywords:    []string{"expungement", "records"},
		SourceURL:   "https://example.com/expunge",
		PublishedAt: time.Date(2023, 11, 12, 8, 0, 0, 0, time.UTC),
		Body:        "A conviction can often be set aside.",
	}

	parsed, issues := ParseFile("x.md", a.Render())
	require.Len(t, parsed, 1)
	require.Empty(t, issues)

	got := parsed[0]
	got.Path, got.Part = "", 0
	assert.Equal(t, a, got)

	// canonical form is stable
	assert.Equal(t, string(a.Render()), string(got.Render()))
}

func TestArticle_RenderRoundTrip_YAMLSpecials(t *testing.T) {
	// colons and leading indicators are common in web-page titles the
	// importer feeds through here, they must not break the frontmatter
	a := Article{
		Title:       "Arrest: What Happens Next",
		Slug:        "arrest-what-happens-next",
		ArticleType: ArticleTypeHelp,
		Keywords:    []string{"arrest: booking", "#rights"},
		SourceURL:   "https://example.com/arrest?a=1&b=2",
		Body:        "Booking follows the arrest.",
	}

	parsed, issues := ParseFile("x.md", a.Render())
	require.Len(t, parsed, 1)
	require.Empty(t, issues)

	got := parsed[0]
	got.Path, got.Part = "", 0
	assert.Equal(t, a, got)

	tbl := []struct{ in, want string }{
		{"plain title", "plain title"},
		{"Arrest: What Happens Next", `"Arrest: What Happens Next"`},
		{"- leading dash", `"- leading dash"`},
		{"trailing colon:", `"trailing colon:"`},
		{" padded ", `" padded "`},
		{"price #1", `"price #1"`},
		{"https://example.com/a", "https://example.com/a"},
		{"", `""`},
	}
	for _, tt := range tbl {
		assert.Equal(t, tt.want, yamlValue(tt.in), tt.in)
	}
}

func TestArticle_Completeness(t *testing.T) {
	assert.Equal(t, 0, Article{Body: "text"}.Completeness())
	assert.Equal(t, 2, Article{Title: "t", Slug: "t"}.Completeness())
	full := Article{
		Title: "t", Slug: "t", ArticleType: ArticleTypeHelp,
		Keywords: []string{"k"}, SourceURL: "https://e.com",
		PublishedAt: time.Now(),
	}
	assert.Equal(t, 6, full.Completeness())
}

func TestArticle_Excerpt(t *testing.T) {
	a := Article{Body: "First paragraph here.\n\nSecond paragraph."}
	assert.Equal(t, "First paragraph here.", a.Excerpt(100))
	assert.Equal(t, "First…", a.Excerpt(6))
}
