package botx

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chanAPI struct {
	mu      sync.Mutex
	updates chan Request
	sent    []Response
}

func (a *chanAPI) Updates() <-chan Request { return a.updates }

func (a *chanAPI) SendMessage(_ context.Context, resp Response) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sent = append(a.sent, resp)
	return nil
}

func TestBot_Run(t *testing.T) {
	api := &chanAPI{updates: make(chan Request, 10)}

	h := func(_ context.Context, req Request) ([]Response, error) {
		return []Response{{ChatID: req.Chat.ID, Text: "echo: " + req.Text}}, nil
	}

	b := NewBot(h, api, WithWorkers(3))

	for i := 0; i < 5; i++ {
		api.updates <- Request{Chat: Chat{ID: "1"}, Text: "hi"}
	}
	close(api.updates)

	done := make(chan struct{})
	go func() { b.Run(context.Background()); close(done) }()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("bot did not stop after updates channel closed")
	}

	api.mu.Lock()
	defer api.mu.Unlock()
	require.Len(t, api.sent, 5)
	assert.Equal(t, "echo: hi", api.sent[0].Text)
}

func TestBot_RunStopsOnContext(t *testing.T) {
	api := &chanAPI{updates: make(chan Request)}
	b := NewBot(func(context.Context, Request) ([]Response, error) {
		return nil, nil
	}, api, WithWorkers(2))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() { b.Run(ctx); close(done) }()

	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("bot did not stop after context cancel")
	}
}
