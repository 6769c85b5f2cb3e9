// Package store contains the article catalog and the bot chat registry.
package store

import (
	"context"
	"errors"

	"github.com/Semior001/aidhub/app/content"
)

// ErrNotFound is an error that is returned when the requested entity is not found.
var ErrNotFound = errors.New("not found")

// Interface defines methods for the article catalog.
type Interface interface {
	Put(ctx context.Context, a content.Article) error
	Get(ctx context.Context, slug string) (content.Article, error)
	List(ctx context.Context, req ListRequest) ([]content.Article, error)
	Delete(ctx context.Context, slug string) error
}

// ListRequest defines parameters for listing articles from the catalog.
type ListRequest struct {
	Category string
	Query    string
	Limit    int
	Offset   int
}

// ChatStore keeps the bot's registered chats.
type ChatStore interface {
	PutChat(ctx context.Context, c Chat) error
	GetChat(ctx context.Context, chatID string) (Chat, error)
	ListChats(ctx context.Context) ([]Chat, error)
	DeleteChat(ctx context.Context, chatID string) error
}

// Chat is a single bot conversation and its authorization state.
type Chat struct {
	ChatID     string `json:"chat_id"`
	Username   string `json:"username"`
	Authorized bool   `json:"authorized"`
	Subscribed bool   `json:"subscribed"`
}
