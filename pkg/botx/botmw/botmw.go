// Package botmw provides middlewares for bot handlers.
package botmw

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/Semior001/aidhub/pkg/botx"
	"github.com/Semior001/aidhub/pkg/logx"
	"github.com/google/uuid"
	"golang.org/x/exp/slog"
)

// RequestID stamps every update with a fresh request id, the logx
// handler picks it up from the context.
func RequestID() botx.Middleware {
	return func(next botx.Handler) botx.Handler {
		return func(ctx context.Context, req botx.Request) ([]botx.Response, error) {
			return next(logx.ContextWithRequestID(ctx, uuid.New().String()), req)
		}
	}
}

// AppendRequestIDOnError suffixes failed responses with the request id
// so a reader can hand it to the admins; when the handler produced no
// reply for the requester at all, a generic apology is added.
func AppendRequestIDOnError() botx.Middleware {
	return func(next botx.Handler) botx.Handler {
		return func(ctx context.Context, req botx.Request) ([]botx.Response, error) {
			resps, err := next(ctx, req)
			if err == nil {
				return resps, nil
			}

			reqID, _ := logx.RequestIDFromContext(ctx)

			answered := false
			for i := range resps {
				resps[i].Text += fmt.Sprintf("\n\nRequest ID: `%s`", reqID)
				answered = answered || resps[i].ChatID == req.Chat.ID
			}

			if !answered {
				resps = append(resps, botx.Response{
					ChatID: req.Chat.ID,
					Text: fmt.Sprintf("Something went wrong, ask the admins for help."+
						"\n\nRequest ID: `%s`", reqID),
				})
			}

			return resps, err
		}
	}
}

// Logger logs every update and its outcome; message text goes to the
// log on debug level only.
func Logger(lg *slog.Logger) botx.Middleware {
	return func(next botx.Handler) botx.Handler {
		return func(ctx context.Context, req botx.Request) ([]botx.Response, error) {
			lg.DebugCtx(ctx, "request received",
				slog.String("chat_id", req.Chat.ID),
				slog.String("username", req.Chat.Username),
				slog.String("text", req.Text))

			start := time.Now()
			resps, err := next(ctx, req)

			lg.InfoCtx(ctx, "request processed",
				slog.String("chat_id", req.Chat.ID),
				slog.String("username", req.Chat.Username),
				slog.Int("responses", len(resps)),
				slog.Duration("elapsed", time.Since(start)),
				slog.Any("err", err))

			return resps, err
		}
	}
}

// Recover turns handler panics into errors.
func Recover(lg *slog.Logger) botx.Middleware {
	return func(next botx.Handler) botx.Handler {
		return func(ctx context.Context, req botx.Request) (resps []botx.Response, err error) {
			defer func() {
				if r := recover(); r != nil {
					lg.ErrorCtx(ctx, "panic recovered",
						slog.Any("panic", r),
						slog.String("stack", string(debug.Stack())))
					err = fmt.Errorf("panic: %v", r)
				}
			}()

			return next(ctx, req)
		}
	}
}

// ErrTimeout is returned when a handler misses its deadline.
var ErrTimeout = errors.New("timed out")

// Timeout bounds handler execution; handlers that ignore the context
// are abandoned, not interrupted.
func Timeout(d time.Duration) botx.Middleware {
	return func(next botx.Handler) botx.Handler {
		return func(ctx context.Context, req botx.Request) ([]botx.Response, error) {
			ctx, cancel := context.WithTimeout(ctx, d)
			defer cancel()

			type result struct {
				resps []botx.Response
				err   error
			}

			done := make(chan result, 1)
			go func() {
				resps, err := next(ctx, req)
				done <- result{resps: resps, err: err}
			}()

			select {
			case res := <-done:
				return res.resps, res.err
			case <-ctx.Done():
				return nil, ErrTimeout
			}
		}
	}
}
