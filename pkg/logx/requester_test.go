package logx

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/go-pkgz/requester/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

func TestLoggingRoundTripper(t *testing.T) {
	buf := &bytes.Buffer{}
	lg := slog.New(slog.HandlerOptions{Level: slog.LevelDebug}.NewJSONHandler(buf))

	next := middleware.RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
		// the logged body must still be readable downstream
		body, err := io.ReadAll(req.Body)
		require.NoError(t, err)
		assert.Equal(t, "ping", string(body))

		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{"Content-Type": []string{"text/plain"}},
			Body:       io.NopCloser(strings.NewReader("pong")),
		}, nil
	})

	rt := LoggingRoundTripper(lg, RoundTripperOpts{
		Level:         slog.LevelDebug,
		SecretHeaders: []string{"authorization"},
	})(next)

	req, err := http.NewRequest(http.MethodPost, "https://example.com/x", strings.NewReader("ping"))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer sekrit")

	resp, err := rt.RoundTrip(req)
	require.NoError(t, err)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "pong", string(body))

	log := buf.String()
	assert.Contains(t, log, "http round trip")
	assert.Contains(t, log, `"status":200`)
	assert.Contains(t, log, "***")
	assert.NotContains(t, log, "sekrit")
	assert.Contains(t, log, "ping")
	assert.Contains(t, log, "pong")
}
