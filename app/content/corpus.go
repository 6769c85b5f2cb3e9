package content

import (
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samber/lo"
)

// Corpus is the parsed state of a content root: every logical article
// found in it plus everything the parser and the validator flagged.
type Corpus struct {
	Articles []Article
	Issues   []Issue
}

// Errors returns issues that break corpus invariants.
func (c Corpus) Errors() []Issue {
	return lo.Filter(c.Issues, func(i Issue, _ int) bool { return i.Severity == SeverityError })
}

// Load walks dir for markdown files and parses each of them. Dot
// directories are skipped. Returns an error only when the walk itself
// fails; per-file findings degrade to issues.
func Load(dir string) (Corpus, error) {
	var corpus Corpus

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if name := d.Name(); name != "." && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(path), ".md") {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			rel = path
		}

		articles, issues := ParseFile(filepath.ToSlash(rel), data)
		corpus.Articles = append(corpus.Articles, articles...)
		corpus.Issues = append(corpus.Issues, issues...)
		return nil
	})
	if os.IsNotExist(err) {
		return Corpus{}, nil
	}
	if err != nil {
		return Corpus{}, fmt.Errorf("walk %s: %w", dir, err)
	}

	corpus.Issues = append(corpus.Issues, Validate(corpus.Articles)...)
	return corpus, nil
}

// Validate checks content-integrity rules over the parsed articles.
func Validate(articles []Article) []Issue {
	var issues []Issue

	report := func(a Article, severity Severity, rule, format string, args ...any) {
		issues = append(issues, Issue{
			Path: a.Path, Part: a.Part, Severity: severity,
			Rule: rule, Msg: fmt.Sprintf(format, args...),
		})
	}

	bySlug := map[string][]Article{}

	for _, a := range articles {
		hasFrontmatter := a.Title != "" || a.Slug != "" || a.ArticleType != "" ||
			len(a.Keywords) > 0 || a.SourceURL != "" || !a.PublishedAt.IsZero()

		if hasFrontmatter && a.Slug == "" {
			report(a, SeverityError, "slug-required", "file with frontmatter must carry a non-empty slug")
		}
		if a.Slug != "" && a.Slug != Slugify(a.Slug) {
			report(a, SeverityError, "slug-form", "slug %q is not in slugified form, want %q", a.Slug, Slugify(a.Slug))
		}
		if a.Title == "" {
			report(a, SeverityWarn, "title-missing", "article has no title")
		}
		if strings.TrimSpace(a.Body) == "" {
			report(a, SeverityError, "body-empty", "article body is empty")
		}
		if a.SourceURL != "" {
			if _, err := url.ParseRequestURI(a.SourceURL); err != nil {
				report(a, SeverityError, "url-invalid", "source url %q is not parseable", a.SourceURL)
			}
		}

		if a.Slug != "" {
			bySlug[a.Slug] = append(bySlug[a.Slug], a)
		}
	}

	for slug, dups := range bySlug {
		if len(dups) < 2 {
			continue
		}
		paths := lo.Map(dups, func(a Article, _ int) string { return fmt.Sprintf("%s[%d]", a.Path, a.Part) })
		sort.Strings(paths)
		report(dups[0], SeverityWarn, "slug-duplicate",
			"slug %q appears in %d places: %s", slug, len(dups), strings.Join(paths, ", "))
	}

	return issues
}

// Resolve collapses duplicate slugs to their most complete export and
// assigns slugs to articles that came without one. The winner of a
// duplicate group is the most complete record, ties broken by newer
// published date and then by lexicographically smallest path. Shadowed
// duplicates are reported as warnings, never as errors: the corpus
// legitimately contains re-exports.
func Resolve(corpus Corpus) Corpus {
	resolved := Corpus{Issues: corpus.Issues}

	groups := map[string][]Article{}
	order := make([]string, 0, len(corpus.Articles))

	for _, a := range corpus.Articles {
		if a.Slug == "" {
			a.Slug = deriveSlug(a)
		}
		if _, ok := groups[a.Slug]; !ok {
			order = append(order, a.Slug)
		}
		groups[a.Slug] = append(groups[a.Slug], a)
	}

	for _, slug := range order {
		dups := groups[slug]
		sort.SliceStable(dups, func(i, j int) bool {
			if ci, cj := dups[i].Completeness(), dups[j].Completeness(); ci != cj {
				return ci > cj
			}
			if !dups[i].PublishedAt.Equal(dups[j].PublishedAt) {
				return dups[i].PublishedAt.After(dups[j].PublishedAt)
			}
			if dups[i].Path != dups[j].Path {
				return dups[i].Path < dups[j].Path
			}
			return dups[i].Part < dups[j].Part
		})

		resolved.Articles = append(resolved.Articles, dups[0])
		for _, shadowed := range dups[1:] {
			resolved.Issues = append(resolved.Issues, Issue{
				Path: shadowed.Path, Part: shadowed.Part, Severity: SeverityWarn,
				Rule: "slug-shadowed",
				Msg:  fmt.Sprintf("duplicate of %q shadowed by %s[%d]", slug, dups[0].Path, dups[0].Part),
			})
		}
	}

	return resolved
}

// deriveSlug produces a slug for an article exported without one: from
// the title, else from the file name, else from a stable digest.
func deriveSlug(a Article) string {
	if a.Title != "" {
		return Slugify(a.Title)
	}
	if a.Path != "" {
		base := strings.TrimSuffix(filepath.Base(a.Path), filepath.Ext(a.Path))
		if s := Slugify(base); s != "untitled" {
			return s
		}
	}
	return StableKey(map[string]string{"body": a.Body, "path": a.Path}, nil)
}
