package botx

import (
	"context"
	"sync"

	"github.com/Semior001/aidhub/pkg/logx"
	"golang.org/x/exp/slog"
)

// API receives chat updates and delivers replies.
type API interface {
	Updates() <-chan Request
	SendMessage(ctx context.Context, resp Response) error
}

// Bot pulls updates off the API and fans them out over a worker pool.
type Bot struct {
	h       Handler
	api     API
	workers int
	log     *slog.Logger
}

// Option configures the bot.
type Option func(*Bot)

// WithWorkers sets the size of the worker pool, 1 by default.
func WithWorkers(n int) Option { return func(b *Bot) { b.workers = n } }

// WithLogger sets the logger, discards by default.
func WithLogger(lg *slog.Logger) Option { return func(b *Bot) { b.log = lg } }

// NewBot creates a new Bot.
func NewBot(h Handler, api API, opts ...Option) *Bot {
	b := &Bot{h: h, api: api, workers: 1, log: slog.New(logx.NoOp())}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Run blocks serving updates until the context is dead or the updates
// channel is closed.
func (b *Bot) Run(ctx context.Context) {
	wg := &sync.WaitGroup{}

	for i := 0; i < b.workers; i++ {
		wg.Add(1)
		i := i
		go func() {
			defer wg.Done()
			b.log.DebugCtx(ctx, "worker started", slog.Int("worker", i))
			b.work(ctx)
			b.log.DebugCtx(ctx, "worker stopped", slog.Int("worker", i))
		}()
	}

	wg.Wait()
}

func (b *Bot) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case req, ok := <-b.api.Updates():
			if !ok {
				return
			}

			resps, err := b.h(ctx, req)
			if err != nil {
				b.log.ErrorCtx(ctx, "handler failed",
					slog.String("chat_id", req.Chat.ID), slog.Any("err", err))
			}

			for _, resp := range resps {
				if err := b.api.SendMessage(ctx, resp); err != nil {
					b.log.WarnCtx(ctx, "send response",
						slog.String("chat_id", resp.ChatID), slog.Any("err", err))
				}
			}
		}
	}
}
