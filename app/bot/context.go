package bot

import (
	"context"

	"github.com/Semior001/aidhub/app/store"
)

type chatKey struct{}

func chatFromContext(ctx context.Context) (store.Chat, bool) {
	c, ok := ctx.Value(chatKey{}).(store.Chat)
	return c, ok
}

func contextWithChat(ctx context.Context, c store.Chat) context.Context {
	return context.WithValue(ctx, chatKey{}, c)
}
