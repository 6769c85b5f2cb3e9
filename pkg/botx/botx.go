// Package botx provides interfaces and types to handle bot updates,
// with a chi-like router.
package botx

import "context"

// Chat identifies the conversation a request came from.
type Chat struct {
	ID       string
	Username string
}

// Request is a single incoming message.
type Request struct {
	Chat Chat
	Text string
}

// Response is a single outgoing message.
type Response struct {
	ChatID           string
	Text             string
	ReplyToMessageID string
}

// Handler processes a request and returns messages to send.
type Handler func(ctx context.Context, req Request) ([]Response, error)

// Middleware wraps a handler.
type Middleware func(next Handler) Handler

// NotFound is the default handler for unmatched requests.
func NotFound(_ context.Context, req Request) ([]Response, error) {
	return []Response{{
		ChatID: req.Chat.ID,
		Text:   "I don't understand this command.",
	}}, nil
}
