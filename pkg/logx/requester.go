package logx

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-pkgz/requester/middleware"
	"github.com/samber/lo"
	"golang.org/x/exp/slog"
)

// RoundTripperOpts contains options for the logging round tripper.
type RoundTripperOpts struct {
	Level         slog.Level
	SecretHeaders []string
}

// LoggingRoundTripper logs one entry per outgoing request with both
// sides of the exchange; secret header values are masked, bodies are
// captured up to a limit.
func LoggingRoundTripper(lg *slog.Logger, opts RoundTripperOpts) middleware.RoundTripperHandler {
	return func(next http.RoundTripper) http.RoundTripper {
		return middleware.RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			var reqBody string
			req.Body, reqBody = snapshotBody(req.Body)

			attrs := []slog.Attr{
				slog.String("method", req.Method),
				slog.String("url", req.URL.String()),
				slog.Any("request_headers", maskHeaders(req.Header, opts.SecretHeaders)),
				slog.String("request_body", reqBody),
			}

			start := time.Now()
			resp, err := next.RoundTrip(req)
			attrs = append(attrs, slog.Duration("elapsed", time.Since(start)))

			if err != nil || resp == nil {
				attrs = append(attrs, slog.Any("err", err))
				lg.LogAttrs(req.Context(), opts.Level, "http round trip", attrs...)
				return resp, err
			}

			var respBody string
			resp.Body, respBody = snapshotBody(resp.Body)
			attrs = append(attrs,
				slog.Int("status", resp.StatusCode),
				slog.Any("response_headers", maskHeaders(resp.Header, opts.SecretHeaders)),
				slog.String("response_body", respBody),
			)

			lg.LogAttrs(req.Context(), opts.Level, "http round trip", attrs...)
			return resp, err
		})
	}
}

func maskHeaders(h http.Header, secret []string) map[string]string {
	out := make(map[string]string, len(h))
	for k, vals := range h {
		if lo.ContainsBy(secret, func(s string) bool { return strings.EqualFold(s, k) }) {
			out[k] = "***"
			continue
		}
		out[k] = strings.Join(vals, ",")
	}
	return out
}

// snapshotAt caps how much of a body ends up in the log entry.
const snapshotAt = 1024

// snapshotBody reads the head of the body for the log entry and hands
// back an equivalent reader for the actual consumer.
func snapshotBody(rc io.ReadCloser) (io.ReadCloser, string) {
	if rc == nil {
		return nil, ""
	}

	buf := &bytes.Buffer{}
	_, err := io.CopyN(buf, rc, snapshotAt)

	head := strings.NewReplacer("\n", " ", "\t", " ").Replace(buf.String())

	if err != nil { // the whole body fit into the buffer
		return io.NopCloser(bytes.NewReader(buf.Bytes())), head
	}

	return &replayCloser{rd: io.MultiReader(buf, rc), close: rc.Close}, head + "..."
}

type replayCloser struct {
	rd    io.Reader
	close func() error
}

func (c *replayCloser) Read(p []byte) (int, error) { return c.rd.Read(p) }
func (c *replayCloser) Close() error               { return c.close() }
