package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Semior001/aidhub/app/store"
	"github.com/Semior001/aidhub/pkg/botx"
	"github.com/samber/lo"
)

func (c *Ctrl) list(ctx context.Context, req botx.Request) ([]botx.Response, error) {
	chats, err := c.Chats.ListChats(ctx)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}

	sb := &strings.Builder{}
	_, _ = sb.WriteString("Chats:\n")
	for _, chat := range chats {
		_, _ = sb.WriteString(fmt.Sprintf("id: %s, username: %s, authorized: %t, subscribed: %t\n",
			chat.ChatID, escapeMarkdown(chat.Username), chat.Authorized, chat.Subscribed))
	}

	return []botx.Response{{
		ChatID: req.Chat.ID,
		Text:   sb.String(),
	}}, nil
}

func (c *Ctrl) delete(ctx context.Context, req botx.Request) ([]botx.Response, error) {
	tokens := strings.Split(req.Text, " ")
	if len(tokens) != 2 {
		return nil, errors.New("invalid command")
	}

	chatID := tokens[1]
	if err := c.Chats.DeleteChat(ctx, chatID); err != nil {
		return nil, fmt.Errorf("delete chat: %w", err)
	}

	return []botx.Response{{
		ChatID: req.Chat.ID,
		Text:   fmt.Sprintf("Chat with id %s was deleted.", chatID),
	}}, nil
}

func (c *Ctrl) stats(ctx context.Context, req botx.Request) ([]botx.Response, error) {
	articles, err := c.Catalog.List(ctx, store.ListRequest{})
	if err != nil {
		return nil, fmt.Errorf("list catalog: %w", err)
	}

	sb := &strings.Builder{}
	fmt.Fprintf(sb, "articles in catalog: %d\n", len(articles))

	if c.GPTStats != nil {
		hits, misses, evicted, added := c.GPTStats()
		fmt.Fprintf(sb, "gpt cache: hits: %d, misses: %d, evictions: %d, size: %d\n",
			hits, misses, evicted, added)
	}

	return []botx.Response{{
		ChatID: req.Chat.ID,
		Text:   sb.String(),
	}}, nil
}

func (c *Ctrl) importURL(ctx context.Context, req botx.Request) ([]botx.Response, error) {
	if c.Import == nil {
		return []botx.Response{{
			ChatID: req.Chat.ID,
			Text:   "Import is not configured, start the server with an OpenAI token.",
		}}, nil
	}

	tokens := strings.Fields(req.Text)
	if len(tokens) != 2 {
		return nil, errors.New("invalid command")
	}

	a, err := c.Import(ctx, tokens[1])
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", tokens[1], err)
	}

	return []botx.Response{{
		ChatID: req.Chat.ID,
		Text: fmt.Sprintf("Imported *%s*\n[source](%s/schemas/help-articles/%s)",
			escapeMarkdown(a.Title), c.RawBase, a.Path),
	}}, nil
}

func (c *Ctrl) ensureAdmin(h botx.Handler) botx.Handler {
	return func(ctx context.Context, req botx.Request) ([]botx.Response, error) {
		if !lo.Contains(c.AdminIDs, req.Chat.ID) {
			return nil, nil
		}

		return h(ctx, req)
	}
}

func (c *Ctrl) ensureAuthorized(h botx.Handler) botx.Handler {
	return func(ctx context.Context, req botx.Request) ([]botx.Response, error) {
		chat, err := c.Chats.GetChat(ctx, req.Chat.ID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return c.register(ctx, req)
			}

			return nil, fmt.Errorf("get chat: %w", err)
		}

		if !chat.Authorized {
			if req.Text != c.AuthToken {
				return []botx.Response{{
					ChatID: req.Chat.ID,
					Text:   "You are not authorized, please provide a token.",
				}}, nil
			}

			chat.Authorized = true
			chat.Subscribed = true

			if err := c.Chats.PutChat(ctx, chat); err != nil {
				return nil, fmt.Errorf("update chat: %w", err)
			}

			return []botx.Response{{
				ChatID: req.Chat.ID,
				Text: "You are now authorized.\n" +
					"Send me a few words and I'll find matching help articles in the catalog.",
			}}, nil
		}

		return h(contextWithChat(ctx, chat), req)
	}
}
