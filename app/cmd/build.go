package cmd

import (
	"fmt"

	"github.com/Semior001/aidhub/app/site"
	"golang.org/x/exp/slog"
)

// Build is a command to render the public site into a directory.
type Build struct {
	Root string `long:"root" env:"ROOT" default:"." description:"content root, holds schemas/"`
	Out  string `long:"out" env:"OUT" default:"." description:"directory to write the site into"`

	Repo string `long:"repo" env:"REPO" description:"override owner/repo slug of the origin"`
	Ref  string `long:"ref" env:"REF" description:"override branch or tag of the origin"`

	SkipAISitemap bool `long:"skip-ai-sitemap" env:"SKIP_AI_SITEMAP" description:"do not write ai-sitemap.xml"`
	SkipPages     bool `long:"skip-pages" env:"SKIP_PAGES" description:"do not write html pages and sitemap.xml"`
}

// Execute runs the command.
func (c Build) Execute(_ []string) error {
	lg := slog.Default()

	origin, err := resolveOrigin(c.Root, c.Repo, c.Ref)
	if err != nil {
		return err
	}
	lg.Info("origin resolved",
		slog.String("slug", origin.Slug), slog.String("ref", origin.Ref))

	b := &site.Builder{
		Log:           lg.With(slog.String("prefix", "site")),
		Root:          c.Root,
		Out:           c.Out,
		Origin:        origin,
		SkipAISitemap: c.SkipAISitemap,
		SkipPages:     c.SkipPages,
	}

	if err := b.Build(); err != nil {
		return fmt.Errorf("build site: %w", err)
	}
	return nil
}

// resolveOrigin detects the repo origin with optional flag overrides.
func resolveOrigin(root, repo, ref string) (site.Origin, error) {
	if repo != "" {
		o := site.Origin{Slug: repo, Ref: ref}
		if o.Ref == "" {
			o.Ref = "main"
		}
		return o, nil
	}

	o, err := site.DetectOrigin(root)
	if err != nil {
		return site.Origin{}, fmt.Errorf("detect origin: %w", err)
	}
	if ref != "" {
		o.Ref = ref
	}
	return o, nil
}
