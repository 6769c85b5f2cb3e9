package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/Semior001/aidhub/app/api"
	"github.com/Semior001/aidhub/app/bot"
	"github.com/Semior001/aidhub/app/content"
	"github.com/Semior001/aidhub/app/enrich"
	"github.com/Semior001/aidhub/app/site"
	"github.com/Semior001/aidhub/app/store"
	"github.com/Semior001/aidhub/pkg/botx"
	"github.com/Semior001/aidhub/pkg/botx/botapi"
	"github.com/Semior001/aidhub/pkg/logx"
	"github.com/go-pkgz/requester"
	"github.com/go-pkgz/requester/middleware"
	"golang.org/x/exp/slog"
	"golang.org/x/sync/errgroup"
)

// Version is the application version, set from main.
var Version = "unknown"

// Serve is a command to run the hub server with the optional telegram bot.
type Serve struct {
	Addr string `long:"addr" env:"ADDR" default:":8080" description:"address to listen on"`
	Root string `long:"root" env:"ROOT" default:"." description:"content root, holds schemas/"`

	Repo string `long:"repo" env:"REPO" description:"override owner/repo slug of the origin"`
	Ref  string `long:"ref" env:"REF" description:"override branch or tag of the origin"`

	StorePath   string `long:"store-path" env:"STORE_PATH" description:"parent dir for bolt files"`
	ReloadToken string `long:"reload-token" env:"RELOAD_TOKEN" description:"token for the reload endpoint"`
	Routes      bool   `long:"routes" description:"print generated route docs and exit"`

	Bot struct {
		Timeout      time.Duration `long:"timeout" env:"TIMEOUT" default:"6m" description:"timeout for requests"`
		FetchTimeout time.Duration `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"30s" description:"timeout for fetching pages"`

		Telegram struct {
			Token string `long:"token" env:"TOKEN" description:"telegram token"`
		} `group:"telegram" namespace:"telegram" env-namespace:"TELEGRAM"`

		OpenAI struct {
			Token     string        `long:"token" env:"TOKEN" description:"OpenAI token, enables the /import admin command"`
			MaxTokens int           `long:"max-tokens" env:"MAX_TOKENS" default:"1000" description:"max tokens for OpenAI"`
			Timeout   time.Duration `long:"timeout" env:"TIMEOUT" default:"5m" description:"timeout for OpenAI calls"`
		} `group:"openai" namespace:"openai" env-namespace:"OPENAI"`

		AdminIDs  []string `long:"admin-ids" env:"ADMIN_IDS" description:"admin IDs"`
		AuthToken string   `long:"auth-token" env:"AUTH_TOKEN" description:"token for authorizing requests"`
	} `group:"bot" namespace:"bot" env-namespace:"BOT"`
}

// Execute runs the command.
func (c Serve) Execute(_ []string) error {
	lg := slog.Default()

	origin, err := resolveOrigin(c.Root, c.Repo, c.Ref)
	if err != nil {
		return err
	}

	s, err := store.NewBolt(c.StorePath)
	if err != nil {
		return fmt.Errorf("make store: %w", err)
	}

	defer func() {
		if err := s.Close(); err != nil {
			lg.Error("close bolt store", slog.Any("err", err))
		}
	}()

	reindex := func(ctx context.Context) error {
		corpus, err := content.Load(filepath.Join(c.Root, "schemas", "help-articles"))
		if err != nil {
			return fmt.Errorf("load articles: %w", err)
		}
		corpus = content.Resolve(corpus)

		if err := s.Index(ctx, corpus); err != nil {
			return fmt.Errorf("index catalog: %w", err)
		}

		lg.InfoCtx(ctx, "catalog indexed", slog.Int("articles", len(corpus.Articles)))
		return nil
	}

	if err := reindex(context.Background()); err != nil {
		return err
	}

	rest := api.NewRest(lg.With(slog.String("prefix", "api")), s, c.Root, origin)
	rest.Version = Version
	rest.ReloadToken = c.ReloadToken
	rest.Reindex = reindex

	if c.Routes {
		fmt.Println(rest.RoutesDoc())
		return nil
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	ewg, ctx := errgroup.WithContext(ctx)
	ewg.Go(func() error {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
		select {
		case sig := <-sig:
			slog.Warn("caught signal, stopping", slog.String("signal", sig.String()))
			stop()
			return ctx.Err()
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	ewg.Go(func() error {
		return rest.Run(ctx, c.Addr)
	})

	stopBot := func() {}
	if c.Bot.Telegram.Token != "" {
		if stopBot, err = c.runBot(ctx, ewg, lg, s, origin); err != nil {
			return err
		}
	}

	if err := ewg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	stopBot()
	return nil
}

// runBot wires the telegram bot into the errgroup, returning a func to
// stop the telegram listener after the group is done.
func (c Serve) runBot(ctx context.Context, ewg *errgroup.Group, lg *slog.Logger, s *store.Bolt, origin site.Origin) (stop func(), err error) {
	tg, err := botapi.NewTelegram(
		lg.With(slog.String("prefix", "telegram")),
		c.Bot.Telegram.Token,
		100,
	)
	if err != nil {
		return nil, fmt.Errorf("make telegram controller: %w", err)
	}

	ctrl := &bot.Ctrl{
		Logger:         lg.With(slog.String("prefix", "bot")),
		Catalog:        s,
		Chats:          s,
		API:            tg,
		AdminIDs:       c.Bot.AdminIDs,
		AuthToken:      c.Bot.AuthToken,
		HandlerTimeout: c.Bot.Timeout,
		RawBase:        origin.RawBase(),
	}

	if c.Bot.OpenAI.Token != "" {
		svc := c.makeEnricher(lg)
		ctrl.Import = c.importFunc(svc, s)
		ctrl.GPTStats = func() (hits, misses, evicted, added int) {
			st := svc.GPTCacheStat()
			return st.Hits, st.Misses, st.Evicted, st.Added
		}
	}

	b := botx.NewBot(
		ctrl.Routes().Handle,
		tg,
		botx.WithLogger(lg.With(slog.String("prefix", "botx"))),
		botx.WithWorkers(10),
	)

	if err := ctrl.NotifyAdmins(context.Background(), "bot started"); err != nil {
		return nil, fmt.Errorf("notify admins about started bot: %w", err)
	}

	ewg.Go(func() error {
		lg.Info("starting bot")
		b.Run(ctx)
		lg.Warn("bot stopped")
		return nil
	})

	// the telegram listener lives outside the errgroup: it must keep
	// running until the bot workers drained the updates channel
	apiStopped := make(chan struct{})
	go func() {
		lg.Info("starting telegram api")
		tg.Run()
		lg.Warn("telegram api stopped listening for updates")
		apiStopped <- struct{}{}
	}()

	return func() {
		if err := ctrl.NotifyAdmins(context.Background(), "bot stopped"); err != nil {
			lg.Warn("notify admins about stopped bot", slog.Any("err", err))
		}

		lg.Info("stopping telegram api")
		tg.Stop()
		<-apiStopped
		lg.Info("telegram api stopped")
	}, nil
}

// makeEnricher builds the page-import pipeline the /import admin
// command runs on.
func (c Serve) makeEnricher(lg *slog.Logger) *enrich.Service {
	rq := requester.New(http.Client{Timeout: c.Bot.FetchTimeout},
		middleware.Header("User-Agent", "aidhub/"+Version),
		logx.LoggingRoundTripper(
			lg.With(slog.String("prefix", "fetch")),
			logx.RoundTripperOpts{Level: slog.LevelDebug, SecretHeaders: []string{"Authorization"}},
		),
	)

	return enrich.NewService(
		lg.With(slog.String("prefix", "enrich")),
		rq.Client(),
		enrich.NewChatGPT(
			lg.With(slog.String("prefix", "chatgpt")),
			&http.Client{Timeout: c.Bot.OpenAI.Timeout},
			c.Bot.OpenAI.Token,
			c.Bot.OpenAI.MaxTokens,
		),
		enrich.NewExtractor(false),
	)
}

// importFunc writes an imported article into the content tree and the
// catalog, so it shows up in search and in the raw sitemap right away.
func (c Serve) importFunc(svc *enrich.Service, s *store.Bolt) bot.ImportFunc {
	return func(ctx context.Context, u string) (content.Article, error) {
		a, err := svc.Import(ctx, u)
		if err != nil {
			return content.Article{}, err
		}

		dir := filepath.Join(c.Root, "schemas", "help-articles")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return content.Article{}, fmt.Errorf("make articles dir: %w", err)
		}

		a.Path = a.Slug + ".md"
		if err := os.WriteFile(filepath.Join(dir, a.Path), a.Render(), 0o644); err != nil {
			return content.Article{}, fmt.Errorf("write article: %w", err)
		}

		if err := s.Put(ctx, a); err != nil {
			return content.Article{}, fmt.Errorf("index article: %w", err)
		}

		return a, nil
	}
}
