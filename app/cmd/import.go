package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/Semior001/aidhub/app/enrich"
	"github.com/Semior001/aidhub/pkg/logx"
	"github.com/go-pkgz/requester"
	"github.com/go-pkgz/requester/middleware"
	"golang.org/x/exp/slog"
)

// Import is a command to fetch web pages and add them to the content
// tree as help articles.
type Import struct {
	Out string `long:"out" env:"OUT" default:"." description:"content root to write articles into"`
	Dry bool   `long:"dry" env:"DRY" description:"print articles instead of writing files"`

	OpenAI struct {
		Token     string        `long:"token" env:"TOKEN" description:"OpenAI token"`
		MaxTokens int           `long:"max-tokens" env:"MAX_TOKENS" default:"1000" description:"max tokens for OpenAI"`
		Timeout   time.Duration `long:"timeout" env:"TIMEOUT" default:"5m" description:"timeout for OpenAI calls"`
	} `group:"openai" namespace:"openai" env-namespace:"OPENAI"`

	FetchTimeout time.Duration `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"30s" description:"timeout for fetching pages"`
}

// Execute runs the command.
func (c Import) Execute(args []string) error {
	if len(args) == 0 {
		return errors.New("no urls provided")
	}

	lg := slog.Default()

	rq := requester.New(http.Client{Timeout: c.FetchTimeout},
		middleware.Header("User-Agent", "aidhub/"+Version),
		logx.LoggingRoundTripper(
			lg.With(slog.String("prefix", "fetch")),
			logx.RoundTripperOpts{Level: slog.LevelDebug, SecretHeaders: []string{"Authorization"}},
		),
	)

	svc := enrich.NewService(
		lg.With(slog.String("prefix", "enrich")),
		rq.Client(),
		enrich.NewChatGPT(
			lg.With(slog.String("prefix", "chatgpt")),
			&http.Client{Timeout: c.OpenAI.Timeout},
			c.OpenAI.Token,
			c.OpenAI.MaxTokens,
		),
		enrich.NewExtractor(false),
	)

	dir := filepath.Join(c.Out, "schemas", "help-articles")
	if !c.Dry {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("make articles dir: %w", err)
		}
	}

	ctx := context.Background()
	for _, u := range args {
		a, err := svc.Import(ctx, u)
		if err != nil {
			return fmt.Errorf("import %s: %w", u, err)
		}

		if c.Dry {
			fmt.Printf("%s\n\n", a.Render())
			continue
		}

		path := filepath.Join(dir, a.Slug+".md")
		if err := os.WriteFile(path, a.Render(), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}

		lg.Info("article imported",
			slog.String("url", u), slog.String("path", path))
	}

	return nil
}
