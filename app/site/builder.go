package site

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/exp/slog"
)

// Builder writes the whole public surface of the hub to an output
// directory: rendered pages, both sitemaps, robots.txt and the
// .nojekyll marker GitHub Pages needs to serve files as-is.
type Builder struct {
	Log    *slog.Logger
	Root   string // content root, holds schemas/
	Out    string
	Origin Origin
	Now    func() time.Time

	SkipAISitemap bool
	SkipPages     bool
}

// Build renders and writes everything.
func (b *Builder) Build() error {
	now := time.Now
	if b.Now != nil {
		now = b.Now
	}

	data, err := LoadData(b.Root)
	if err != nil {
		return fmt.Errorf("load content: %w", err)
	}
	b.Log.Info("content loaded",
		slog.Int("articles", len(data.Articles)),
		slog.Int("data_files", len(data.Files)))

	if err = os.MkdirAll(b.Out, 0o755); err != nil {
		return fmt.Errorf("make output dir: %w", err)
	}

	if !b.SkipPages {
		if err = b.buildPages(data, now()); err != nil {
			return err
		}
	}

	if !b.SkipAISitemap {
		if err = b.buildAISitemap(data, now()); err != nil {
			return err
		}
	}

	if err = b.write("robots.txt", Robots(b.Origin)); err != nil {
		return err
	}
	if err = b.write(".nojekyll", nil); err != nil {
		return err
	}

	b.Log.Info("site built", slog.String("out", b.Out))
	return nil
}

func (b *Builder) buildPages(data Data, now time.Time) error {
	r := &Renderer{Origin: b.Origin, Now: b.Now}
	pages, err := r.Pages(data)
	if err != nil {
		return fmt.Errorf("render pages: %w", err)
	}

	urls := make([]string, 0, len(PageNames))
	for _, name := range PageNames {
		if err = b.write(name, pages[name]); err != nil {
			return err
		}
		urls = append(urls, b.Origin.PagesBase()+"/"+name)
	}

	sitemap, err := Sitemap(urls, now)
	if err != nil {
		return fmt.Errorf("render sitemap: %w", err)
	}
	return b.write("sitemap.xml", sitemap)
}

func (b *Builder) buildAISitemap(data Data, now time.Time) error {
	urls := make([]string, 0, len(data.Files))
	for _, f := range data.Files {
		urls = append(urls, b.Origin.RawBase()+"/"+f)
	}

	sitemap, err := Sitemap(urls, now)
	if err != nil {
		return fmt.Errorf("render ai sitemap: %w", err)
	}
	return b.write("ai-sitemap.xml", sitemap)
}

func (b *Builder) write(name string, data []byte) error {
	path := filepath.Join(b.Out, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	b.Log.Debug("wrote file", slog.String("path", path), slog.Int("size", len(data)))
	return nil
}
