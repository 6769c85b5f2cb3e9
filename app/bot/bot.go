// Package bot contains routers and controllers for the catalog bot.
package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Semior001/aidhub/app/content"
	"github.com/Semior001/aidhub/app/store"
	"github.com/Semior001/aidhub/pkg/botx"
	"github.com/Semior001/aidhub/pkg/botx/botmw"
	"golang.org/x/exp/slog"
)

// GPTStats reports the summary cache state for the admin stats command.
type GPTStats func() (hits, misses, evicted, added int)

// ImportFunc fetches a web page, turns it into a help article and puts
// it into the content tree and the catalog.
type ImportFunc func(ctx context.Context, url string) (content.Article, error)

// Ctrl provides routes and controllers for bot updates.
type Ctrl struct {
	Logger         *slog.Logger
	Catalog        store.Interface
	Chats          store.ChatStore
	API            botx.API
	AdminIDs       []string
	AuthToken      string
	HandlerTimeout time.Duration
	RawBase        string
	GPTStats       GPTStats
	Import         ImportFunc
}

// Routes returns a multiplexer for bot controllers.
func (c *Ctrl) Routes() *botx.Router {
	rtr := botx.NewRouter()

	rtr.Use(
		botmw.RequestID(),
		botmw.AppendRequestIDOnError(),
		botmw.Recover(c.Logger),
		botmw.Logger(c.Logger),
		botmw.Timeout(c.HandlerTimeout),
		c.ensureAuthorized,
	)

	rtr.NotFound(c.search)
	rtr.Add("/start", c.start)
	rtr.Add("/stop", c.stop)
	rtr.Add("/help", c.help)

	rtr.Group(func(rtr *botx.Router) {
		rtr.Use(c.ensureAdmin)

		rtr.Add("/list", c.list)
		rtr.Add("/delete", c.delete)
		rtr.Add("/stats", c.stats)
		rtr.Add("/import", c.importURL)
	})

	return rtr
}

func (c *Ctrl) start(ctx context.Context, req botx.Request) ([]botx.Response, error) {
	chat, ok := chatFromContext(ctx)
	if !ok {
		return c.register(ctx, req)
	}

	chat.Subscribed = true
	if err := c.Chats.PutChat(ctx, chat); err != nil {
		return nil, fmt.Errorf("update chat: %w", err)
	}

	return []botx.Response{{
		ChatID: req.Chat.ID,
		Text:   "You have been subscribed to catalog updates.",
	}}, nil
}

func (c *Ctrl) stop(ctx context.Context, req botx.Request) ([]botx.Response, error) {
	chat, ok := chatFromContext(ctx)
	if !ok {
		return nil, fmt.Errorf("no chat in context")
	}

	chat.Subscribed = false
	if err := c.Chats.PutChat(ctx, chat); err != nil {
		return nil, fmt.Errorf("update chat: %w", err)
	}

	return []botx.Response{{
		ChatID: req.Chat.ID,
		Text:   "You will no longer receive catalog updates.",
	}}, nil
}

func (c *Ctrl) help(_ context.Context, req botx.Request) ([]botx.Response, error) {
	return []botx.Response{{
		ChatID: req.Chat.ID,
		Text: "Send me a few words and I'll find matching help articles in the catalog.\n" +
			"Commands:\n" +
			"/start - subscribe to catalog updates\n" +
			"/stop - unsubscribe\n" +
			"/help - this message",
	}}, nil
}

// searchLimit caps the number of articles a single query returns.
const searchLimit = 3

func (c *Ctrl) search(ctx context.Context, req botx.Request) ([]botx.Response, error) {
	hits, err := store.Search(ctx, c.Catalog, req.Text, searchLimit)
	if err != nil {
		return nil, fmt.Errorf("search catalog: %w", err)
	}

	if len(hits) == 0 {
		return []botx.Response{{
			ChatID: req.Chat.ID,
			Text:   "Nothing found, try different words or see /help.",
		}}, nil
	}

	sb := &strings.Builder{}
	for _, hit := range hits {
		a, err := c.Catalog.Get(ctx, hit.Slug)
		if err != nil {
			return nil, fmt.Errorf("get article %s: %w", hit.Slug, err)
		}

		title := a.Title
		if title == "" {
			title = a.Slug
		}

		fmt.Fprintf(sb, "*%s*\n", escapeMarkdown(title))
		if excerpt := a.Excerpt(200); excerpt != "" {
			fmt.Fprintf(sb, "%s\n", escapeMarkdown(excerpt))
		}
		fmt.Fprintf(sb, "[source](%s/schemas/help-articles/%s)\n\n", c.RawBase, a.Path)
	}

	return []botx.Response{{
		ChatID: req.Chat.ID,
		Text:   strings.TrimSpace(sb.String()),
	}}, nil
}

func (c *Ctrl) register(ctx context.Context, req botx.Request) ([]botx.Response, error) {
	chat := store.Chat{
		ChatID:   req.Chat.ID,
		Username: req.Chat.Username,
	}

	if err := c.Chats.PutChat(ctx, chat); err != nil {
		return nil, fmt.Errorf("add chat: %w", err)
	}

	const response = "Hello! In order to search the catalog, you need to provide a token,\n" +
		"please ask admin for it and then send it to me."

	if err := c.NotifyAdmins(ctx, fmt.Sprintf("new chat: %s", req.Chat.Username)); err != nil {
		c.Logger.WarnCtx(ctx, "notify admins about registered chat", slog.Any("err", err))
	}

	return []botx.Response{{
		ChatID: req.Chat.ID,
		Text:   response,
	}}, nil
}

// NotifyAdmins sends a message to all admins.
func (c *Ctrl) NotifyAdmins(ctx context.Context, msg string) error {
	for _, adminID := range c.AdminIDs {
		if err := c.API.SendMessage(ctx, botx.Response{
			ChatID: adminID,
			Text:   msg,
		}); err != nil {
			return fmt.Errorf("send message to admin: %w", err)
		}
	}

	return nil
}

var mdEscaper = strings.NewReplacer(
	`*`, `\*`,
	`_`, `\_`,
	"`", "\\`",
	"[", "\\[",
	"]", "\\]",
	"(", "\\(",
	")", "\\)",
	"~", "\\~",
	">", "\\>",
)

func escapeMarkdown(s string) string {
	return mdEscaper.Replace(s)
}
