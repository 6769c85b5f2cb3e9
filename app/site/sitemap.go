package site

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

type urlSet struct {
	XMLName xml.Name   `xml:"urlset"`
	NS      string     `xml:"xmlns,attr"`
	URLs    []urlEntry `xml:"url"`
}

type urlEntry struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod"`
}

// Sitemap renders a sitemap XML document with the given URLs, each
// stamped with the same lastmod.
func Sitemap(urls []string, now time.Time) ([]byte, error) {
	set := urlSet{NS: sitemapNS}
	lastmod := now.UTC().Format("2006-01-02T15:04:05Z")
	for _, u := range urls {
		set.URLs = append(set.URLs, urlEntry{Loc: u, LastMod: lastmod})
	}

	buf := &bytes.Buffer{}
	buf.WriteString(xml.Header)

	enc := xml.NewEncoder(buf)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return nil, fmt.Errorf("encode sitemap: %w", err)
	}
	buf.WriteString("\n")

	return buf.Bytes(), nil
}

// dataExts are the machine-readable files the AI sitemap advertises.
var dataExts = map[string]bool{
	".json": true, ".yaml": true, ".yml": true, ".md": true, ".llm": true,
}

// DataFiles lists raw data files under the schemas tree of root,
// repo-relative with forward slashes, sorted.
func DataFiles(root string) ([]string, error) {
	var paths []string

	schemas := filepath.Join(root, "schemas")
	err := filepath.WalkDir(schemas, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !dataExts[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", schemas, err)
	}

	sort.Strings(paths)
	return paths, nil
}
