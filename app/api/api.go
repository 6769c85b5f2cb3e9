// Package api serves the hub over HTTP: rendered pages straight from
// the content root plus a JSON API over the article catalog.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Semior001/aidhub/app/content"
	"github.com/Semior001/aidhub/app/site"
	"github.com/Semior001/aidhub/app/store"
	"github.com/Semior001/aidhub/pkg/logx"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/docgen"
	"github.com/go-chi/render"
	cache "github.com/go-pkgz/expirable-cache/v2"
	"golang.org/x/exp/slog"
)

// pageTTL is for how long a rendered page is served from cache.
const pageTTL = 5 * time.Minute

// Rest provides a REST API and the rendered pages of the hub.
type Rest struct {
	Logger      *slog.Logger
	Catalog     store.Interface
	Root        string // content root, holds schemas/
	Origin      site.Origin
	Version     string
	ReloadToken string
	Reindex     func(ctx context.Context) error

	pages cache.Cache[string, []byte]
}

// NewRest creates the server controller.
func NewRest(lg *slog.Logger, catalog store.Interface, root string, origin site.Origin) *Rest {
	return &Rest{
		Logger:  lg,
		Catalog: catalog,
		Root:    root,
		Origin:  origin,
		pages:   cache.NewCache[string, []byte]().WithTTL(pageTTL),
	}
}

// Run starts the http server and blocks until the context is dead.
func (s *Rest) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.Logger.WarnCtx(ctx, "failed to shutdown server", slog.Any("err", err))
		}
	}()

	s.Logger.InfoCtx(ctx, "starting server", slog.String("addr", addr))
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen and serve: %w", err)
	}

	return nil
}

// Routes returns the router of the server.
func (s *Rest) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	if s.Version != "" {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("App-Version", s.Version)
				next.ServeHTTP(w, r)
			})
		})
	}

	r.Get("/", s.page("index"))
	r.Get("/{page:[a-z]+}.html", s.pageFromURL)
	r.Get("/sitemap.xml", s.sitemap)
	r.Get("/ai-sitemap.xml", s.aiSitemap)
	r.Get("/robots.txt", s.robots)

	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("pong"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Route("/articles", func(r chi.Router) {
			r.With(paginate).Get("/", s.listArticles)
			r.Get("/search", s.searchArticles)
			r.Get("/{slug:[a-z0-9-]+}", s.getArticle)
		})

		r.Get("/issues", s.listIssues)
		r.Post("/reload", s.reload)
	})

	return r
}

// RoutesDoc returns generated markdown docs for the router.
func (s *Rest) RoutesDoc() string {
	return docgen.MarkdownRoutesDoc(s.Routes(), docgen.MarkdownOpts{
		ProjectPath: "github.com/Semior001/aidhub",
		Intro:       "aidhub public API.",
	})
}

func (s *Rest) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if reqID := middleware.GetReqID(ctx); reqID != "" {
			ctx = logx.ContextWithRequestID(ctx, reqID)
		}

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r.WithContext(ctx))

		s.Logger.InfoCtx(ctx, "request served",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Int("bytes", ww.BytesWritten()),
			slog.Duration("elapsed", time.Since(start)),
		)
	})
}

func (s *Rest) pageFromURL(w http.ResponseWriter, r *http.Request) {
	s.page(chi.URLParam(r, "page"))(w, r)
}

func (s *Rest) page(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := s.renderPage(name + ".html")
		if err != nil {
			if errors.Is(err, errPageNotFound) {
				_ = render.Render(w, r, ErrNotFound)
				return
			}
			_ = render.Render(w, r, ErrInternal(err))
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(body)
	}
}

var errPageNotFound = errors.New("no such page")

func (s *Rest) renderPage(name string) ([]byte, error) {
	if body, ok := s.pages.Get(name); ok {
		return body, nil
	}

	data, err := site.LoadData(s.Root)
	if err != nil {
		return nil, fmt.Errorf("load content: %w", err)
	}

	r := &site.Renderer{Origin: s.Origin}
	pages, err := r.Pages(data)
	if err != nil {
		return nil, fmt.Errorf("render pages: %w", err)
	}

	for pageName, body := range pages {
		s.pages.Set(pageName, body, 0)
	}

	body, ok := pages[name]
	if !ok {
		return nil, errPageNotFound
	}
	return body, nil
}

func (s *Rest) sitemap(w http.ResponseWriter, r *http.Request) {
	urls := make([]string, 0, len(site.PageNames))
	for _, name := range site.PageNames {
		urls = append(urls, s.Origin.PagesBase()+"/"+name)
	}
	s.serveSitemap(w, r, urls)
}

func (s *Rest) aiSitemap(w http.ResponseWriter, r *http.Request) {
	files, err := site.DataFiles(s.Root)
	if err != nil {
		_ = render.Render(w, r, ErrInternal(err))
		return
	}

	urls := make([]string, 0, len(files))
	for _, f := range files {
		urls = append(urls, s.Origin.RawBase()+"/"+f)
	}
	s.serveSitemap(w, r, urls)
}

func (s *Rest) serveSitemap(w http.ResponseWriter, r *http.Request, urls []string) {
	body, err := site.Sitemap(urls, time.Now())
	if err != nil {
		_ = render.Render(w, r, ErrInternal(err))
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	_, _ = w.Write(body)
}

func (s *Rest) robots(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write(site.Robots(s.Origin))
}

func (s *Rest) listArticles(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParamsFromContext(r.Context())

	articles, err := s.Catalog.List(r.Context(), store.ListRequest{
		Category: r.URL.Query().Get("category"),
		Query:    r.URL.Query().Get("q"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		_ = render.Render(w, r, ErrInternal(err))
		return
	}

	if err := render.RenderList(w, r, NewArticleListResponse(articles)); err != nil {
		_ = render.Render(w, r, ErrRender(err))
	}
}

func (s *Rest) getArticle(w http.ResponseWriter, r *http.Request) {
	a, err := s.Catalog.Get(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_ = render.Render(w, r, ErrNotFound)
			return
		}
		_ = render.Render(w, r, ErrInternal(err))
		return
	}

	if err := render.Render(w, r, NewArticleResponse(a)); err != nil {
		_ = render.Render(w, r, ErrRender(err))
	}
}

// searchLimit caps the number of hits a single query returns.
const searchLimit = 10

func (s *Rest) searchArticles(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		_ = render.Render(w, r, ErrInvalidRequest(errors.New("q parameter is required")))
		return
	}

	hits, err := store.Search(r.Context(), s.Catalog, query, searchLimit)
	if err != nil {
		_ = render.Render(w, r, ErrInternal(err))
		return
	}

	render.JSON(w, r, hits)
}

func (s *Rest) listIssues(w http.ResponseWriter, r *http.Request) {
	corpus, err := content.Load(filepath.Join(s.Root, "schemas", "help-articles"))
	if err != nil {
		_ = render.Render(w, r, ErrInternal(err))
		return
	}
	corpus = content.Resolve(corpus)

	if err := render.RenderList(w, r, NewIssueListResponse(corpus.Issues)); err != nil {
		_ = render.Render(w, r, ErrRender(err))
	}
}

func (s *Rest) reload(w http.ResponseWriter, r *http.Request) {
	if s.ReloadToken == "" || r.Header.Get("X-Auth-Token") != s.ReloadToken {
		_ = render.Render(w, r, ErrForbidden)
		return
	}

	s.pages.Purge()

	if s.Reindex != nil {
		if err := s.Reindex(r.Context()); err != nil {
			_ = render.Render(w, r, ErrInternal(err))
			return
		}
	}

	render.JSON(w, r, render.M{"status": "ok"})
}

type pageParamsKey struct{}

type pageParams struct{ limit, offset int }

// paginate parses limit and offset query params into the context.
func paginate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := pageParams{}
		if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
			p.limit = v
		}
		if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v > 0 {
			p.offset = v
		}

		ctx := context.WithValue(r.Context(), pageParamsKey{}, p)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func pageParamsFromContext(ctx context.Context) (limit, offset int) {
	p, _ := ctx.Value(pageParamsKey{}).(pageParams)
	return p.limit, p.offset
}
