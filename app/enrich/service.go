// Package enrich imports external web pages into the corpus: fetches a
// page, extracts its readable article and summarizes it into bullet
// points via chatgpt.
package enrich

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Semior001/aidhub/app/content"
	cache "github.com/go-pkgz/expirable-cache/v2"
	"golang.org/x/exp/slog"
)

// Service fetches pages and turns them into help articles.
type Service struct {
	log       *slog.Logger
	cl        *http.Client
	chatGPT   *ChatGPT
	extractor Extractor
	now       func() time.Time
}

// NewService creates new service.
func NewService(lg *slog.Logger, cl *http.Client, chatGPT *ChatGPT, extractor Extractor) *Service {
	return &Service{
		log:       lg,
		cl:        cl,
		chatGPT:   chatGPT,
		extractor: extractor,
		now:       time.Now,
	}
}

// GPTCacheStat returns cache stats.
func (s *Service) GPTCacheStat() cache.Stats { return s.chatGPT.CacheStat() }

// Import fetches the page and composes a canonical help article out of
// it: readable text prefixed with the chatgpt key points.
func (s *Service) Import(ctx context.Context, u string) (content.Article, error) {
	s.log.DebugCtx(ctx, "importing article from", slog.String("url", u))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return content.Article{}, fmt.Errorf("build request: %w", err)
	}

	resp, err := s.cl.Do(req)
	if err != nil {
		return content.Article{}, fmt.Errorf("do request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			s.log.WarnCtx(ctx, "failed to close response body", slog.Any("err", err))
		}
	}()

	ok := resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices
	if !ok {
		return content.Article{}, fmt.Errorf("bad status code: %d", resp.StatusCode)
	}

	page, err := s.extractor.Extract(resp.Body)
	if err != nil {
		return content.Article{}, fmt.Errorf("extract article: %w", err)
	}
	page.URL = u

	bullets, err := s.chatGPT.BulletPoints(ctx, page)
	if err != nil {
		return content.Article{}, fmt.Errorf("get bullet points: %w", err)
	}

	return s.compose(page, bullets), nil
}

func (s *Service) compose(page Page, bullets string) content.Article {
	title := strings.TrimSpace(page.Title)
	if title == "" {
		if parsed, err := url.Parse(page.URL); err == nil {
			title = parsed.Host
		}
	}

	body := &strings.Builder{}
	fmt.Fprintf(body, "# %s\n\n", title)
	body.WriteString("## Key Points\n\n")
	body.WriteString(strings.TrimSpace(bullets))
	body.WriteString("\n\n## Full Text\n\n")
	body.WriteString(page.Text)

	return content.Article{
		Title:       title,
		Slug:        content.Slugify(title),
		ArticleType: content.ArticleTypeHelp,
		SourceURL:   page.URL,
		PublishedAt: s.now().UTC().Truncate(time.Second),
		Body:        body.String(),
	}
}
