// Package site builds the public surface of the hub: HTML pages,
// sitemaps and robots.txt, the way GitHub Pages serves them.
package site

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Origin locates the repository the content is published from.
type Origin struct {
	Slug string // owner/repo
	Ref  string // branch or tag
}

// RawBase is the base URL raw data files are fetched from.
func (o Origin) RawBase() string {
	return fmt.Sprintf("https://raw.githubusercontent.com/%s/%s", o.Slug, url.PathEscape(o.Ref))
}

// PagesBase is the base URL of the rendered pages site.
func (o Origin) PagesBase() string {
	owner, repo, _ := strings.Cut(o.Slug, "/")
	return fmt.Sprintf("https://%s.github.io/%s", owner, repo)
}

var githubRemoteRe = regexp.MustCompile(`github\.com[:/](?P<owner>[^/]+)/(?P<repo>[^/.\s]+)`)

// DetectOrigin figures out the repo slug and ref: from the Actions
// environment when present, from the .git directory otherwise.
func DetectOrigin(dir string) (Origin, error) {
	o := Origin{
		Slug: os.Getenv("GITHUB_REPOSITORY"),
		Ref:  os.Getenv("GITHUB_REF_NAME"),
	}

	if o.Slug == "" || !strings.Contains(o.Slug, "/") {
		slug, err := slugFromGitConfig(filepath.Join(dir, ".git", "config"))
		if err != nil {
			return Origin{}, fmt.Errorf("detect repo slug: %w", err)
		}
		o.Slug = slug
	}

	if o.Ref == "" {
		o.Ref = refFromGitHead(filepath.Join(dir, ".git", "HEAD"))
	}

	return o, nil
}

func slugFromGitConfig(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read git config: %w", err)
	}

	m := githubRemoteRe.FindStringSubmatch(string(data))
	if m == nil {
		return "", fmt.Errorf("no github remote in %s", path)
	}
	return m[1] + "/" + m[2], nil
}

func refFromGitHead(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return "main"
	}

	head := strings.TrimSpace(string(data))
	if ref, ok := strings.CutPrefix(head, "ref: refs/heads/"); ok && ref != "" {
		return ref
	}
	return "main"
}
