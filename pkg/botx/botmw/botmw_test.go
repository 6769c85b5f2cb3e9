package botmw

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Semior001/aidhub/pkg/botx"
	"github.com/Semior001/aidhub/pkg/logx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

func noop() *slog.Logger { return slog.New(logx.NoOp()) }

func TestRecover(t *testing.T) {
	h := Recover(noop())(func(context.Context, botx.Request) ([]botx.Response, error) {
		panic("boom")
	})

	resps, err := h(context.Background(), botx.Request{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Empty(t, resps)
}

func TestTimeout(t *testing.T) {
	h := Timeout(10*time.Millisecond)(func(ctx context.Context, _ botx.Request) ([]botx.Response, error) {
		select {
		case <-ctx.Done():
		case <-time.After(5 * time.Second):
		}
		return []botx.Response{{Text: "late"}}, nil
	})

	_, err := h(context.Background(), botx.Request{})
	assert.ErrorIs(t, err, ErrTimeout)

	h = Timeout(time.Minute)(func(context.Context, botx.Request) ([]botx.Response, error) {
		return []botx.Response{{Text: "in time"}}, nil
	})

	resps, err := h(context.Background(), botx.Request{})
	require.NoError(t, err)
	require.Len(t, resps, 1)
	assert.Equal(t, "in time", resps[0].Text)
}

func TestAppendRequestIDOnError(t *testing.T) {
	ctx := logx.ContextWithRequestID(context.Background(), "req-1")
	req := botx.Request{Chat: botx.Chat{ID: "42"}}

	// no reply for the requester, apology gets added
	h := AppendRequestIDOnError()(func(context.Context, botx.Request) ([]botx.Response, error) {
		return nil, errors.New("failed")
	})

	resps, err := h(ctx, req)
	require.Error(t, err)
	require.Len(t, resps, 1)
	assert.Equal(t, "42", resps[0].ChatID)
	assert.Contains(t, resps[0].Text, "req-1")

	// existing reply gets the id appended
	h = AppendRequestIDOnError()(func(context.Context, botx.Request) ([]botx.Response, error) {
		return []botx.Response{{ChatID: "42", Text: "partial"}}, errors.New("failed")
	})

	resps, err = h(ctx, req)
	require.Error(t, err)
	require.Len(t, resps, 1)
	assert.Contains(t, resps[0].Text, "partial")
	assert.Contains(t, resps[0].Text, "req-1")
}
