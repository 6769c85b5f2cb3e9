package bot

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/Semior001/aidhub/app/content"
	"github.com/Semior001/aidhub/app/store"
	"github.com/Semior001/aidhub/pkg/botx"
	"github.com/Semior001/aidhub/pkg/logx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

type memCatalog struct {
	mu       sync.Mutex
	articles map[string]content.Article
}

func (m *memCatalog) Put(_ context.Context, a content.Article) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.articles[a.Slug] = a
	return nil
}

func (m *memCatalog) Get(_ context.Context, slug string) (content.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.articles[slug]
	if !ok {
		return content.Article{}, store.ErrNotFound
	}
	return a, nil
}

func (m *memCatalog) List(_ context.Context, _ store.ListRequest) ([]content.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []content.Article
	for _, a := range m.articles {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}

func (m *memCatalog) Delete(_ context.Context, slug string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.articles, slug)
	return nil
}

type memChats struct {
	mu    sync.Mutex
	chats map[string]store.Chat
}

func (m *memChats) PutChat(_ context.Context, c store.Chat) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chats[c.ChatID] = c
	return nil
}

func (m *memChats) GetChat(_ context.Context, chatID string) (store.Chat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.chats[chatID]
	if !ok {
		return store.Chat{}, store.ErrNotFound
	}
	return c, nil
}

func (m *memChats) ListChats(_ context.Context) ([]store.Chat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []store.Chat
	for _, c := range m.chats {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChatID < out[j].ChatID })
	return out, nil
}

func (m *memChats) DeleteChat(_ context.Context, chatID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.chats, chatID)
	return nil
}

type fakeAPI struct {
	mu   sync.Mutex
	sent []botx.Response
}

func (f *fakeAPI) Updates() <-chan botx.Request { return nil }

func (f *fakeAPI) SendMessage(_ context.Context, resp botx.Response) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, resp)
	return nil
}

func testCtrl(t *testing.T) (*Ctrl, *memCatalog, *memChats, *fakeAPI) {
	t.Helper()

	catalog := &memCatalog{articles: map[string]content.Article{}}
	chats := &memChats{chats: map[string]store.Chat{}}
	api := &fakeAPI{}

	ctrl := &Ctrl{
		Logger:         slog.New(logx.NoOp()),
		Catalog:        catalog,
		Chats:          chats,
		API:            api,
		AdminIDs:       []string{"99"},
		AuthToken:      "secret",
		HandlerTimeout: 5 * time.Second,
		RawBase:        "https://raw.githubusercontent.com/acme/hub/main",
	}

	return ctrl, catalog, chats, api
}

func handle(t *testing.T, rtr *botx.Router, chatID, text string) []botx.Response {
	t.Helper()
	resps, err := rtr.Handle(context.Background(), botx.Request{
		Chat: botx.Chat{ID: chatID, Username: "user_" + chatID},
		Text: text,
	})
	require.NoError(t, err)
	return resps
}

func TestCtrl_RegisterAndAuthorize(t *testing.T) {
	ctrl, _, chats, api := testCtrl(t)
	rtr := ctrl.Routes()

	// unknown chat gets registered and asked for a token
	resps := handle(t, rtr, "1", "/start")
	require.Len(t, resps, 1)
	assert.Contains(t, resps[0].Text, "provide a token")

	chat, err := chats.GetChat(context.Background(), "1")
	require.NoError(t, err)
	assert.False(t, chat.Authorized)

	// admin got notified
	require.Len(t, api.sent, 1)
	assert.Equal(t, "99", api.sent[0].ChatID)

	// wrong token is rejected
	resps = handle(t, rtr, "1", "nope")
	require.Len(t, resps, 1)
	assert.Contains(t, resps[0].Text, "not authorized")

	// correct token authorizes and subscribes
	resps = handle(t, rtr, "1", "secret")
	require.Len(t, resps, 1)
	assert.Contains(t, resps[0].Text, "now authorized")

	chat, err = chats.GetChat(context.Background(), "1")
	require.NoError(t, err)
	assert.True(t, chat.Authorized)
	assert.True(t, chat.Subscribed)
}

func TestCtrl_StartStop(t *testing.T) {
	ctrl, _, chats, _ := testCtrl(t)
	rtr := ctrl.Routes()

	require.NoError(t, chats.PutChat(context.Background(),
		store.Chat{ChatID: "1", Authorized: true}))

	resps := handle(t, rtr, "1", "/start")
	require.Len(t, resps, 1)
	assert.Contains(t, resps[0].Text, "subscribed")

	chat, err := chats.GetChat(context.Background(), "1")
	require.NoError(t, err)
	assert.True(t, chat.Subscribed)

	resps = handle(t, rtr, "1", "/stop")
	require.Len(t, resps, 1)
	assert.Contains(t, resps[0].Text, "no longer")

	chat, err = chats.GetChat(context.Background(), "1")
	require.NoError(t, err)
	assert.False(t, chat.Subscribed)
}

func TestCtrl_Search(t *testing.T) {
	ctrl, catalog, chats, _ := testCtrl(t)
	rtr := ctrl.Routes()

	require.NoError(t, chats.PutChat(context.Background(),
		store.Chat{ChatID: "1", Authorized: true}))

	require.NoError(t, catalog.Put(context.Background(), content.Article{
		Title: "How Bail Bonds Work",
		Slug:  "how-bail-bonds-work",
		Path:  "bail.md",
		Body:  "A bail bond lets a defendant leave jail before trial.",
	}))
	require.NoError(t, catalog.Put(context.Background(), content.Article{
		Title: "Traffic Ticket Fines",
		Slug:  "traffic-ticket-fines",
		Path:  "traffic.md",
		Body:  "Fines vary by county.",
	}))

	resps := handle(t, rtr, "1", "bail bond")
	require.Len(t, resps, 1)
	assert.Contains(t, resps[0].Text, "How Bail Bonds Work")
	assert.Contains(t, resps[0].Text, "https://raw.githubusercontent.com/acme/hub/main/schemas/help-articles/bail.md")
	assert.NotContains(t, resps[0].Text, "Traffic Ticket Fines")

	resps = handle(t, rtr, "1", "zoning permits")
	require.Len(t, resps, 1)
	assert.Contains(t, resps[0].Text, "Nothing found")
}

func TestCtrl_Import(t *testing.T) {
	ctrl, _, chats, _ := testCtrl(t)

	var imported []string
	ctrl.Import = func(_ context.Context, u string) (content.Article, error) {
		imported = append(imported, u)
		return content.Article{
			Title: "Arrest: What Happens Next",
			Slug:  "arrest-what-happens-next",
			Path:  "arrest-what-happens-next.md",
		}, nil
	}
	rtr := ctrl.Routes()

	require.NoError(t, chats.PutChat(context.Background(),
		store.Chat{ChatID: "99", Username: "admin", Authorized: true}))
	require.NoError(t, chats.PutChat(context.Background(),
		store.Chat{ChatID: "1", Username: "user", Authorized: true}))

	// non-admin command falls through to admin filter and is dropped
	resps := handle(t, rtr, "1", "/import https://example.com/arrest")
	assert.Empty(t, resps)
	assert.Empty(t, imported)

	resps = handle(t, rtr, "99", "/import https://example.com/arrest")
	require.Len(t, resps, 1)
	assert.Contains(t, resps[0].Text, "Imported")
	assert.Contains(t, resps[0].Text,
		"https://raw.githubusercontent.com/acme/hub/main/schemas/help-articles/arrest-what-happens-next.md")
	assert.Equal(t, []string{"https://example.com/arrest"}, imported)

	// missing url is an error
	_, err := rtr.Handle(context.Background(), botx.Request{
		Chat: botx.Chat{ID: "99", Username: "admin"},
		Text: "/import",
	})
	assert.Error(t, err)

	// unconfigured import answers with a hint instead of failing
	ctrl.Import = nil
	resps = handle(t, rtr, "99", "/import https://example.com/arrest")
	require.Len(t, resps, 1)
	assert.Contains(t, resps[0].Text, "not configured")
}

func TestCtrl_Admin(t *testing.T) {
	ctrl, catalog, chats, _ := testCtrl(t)
	ctrl.GPTStats = func() (int, int, int, int) { return 4, 2, 1, 3 }
	rtr := ctrl.Routes()

	require.NoError(t, chats.PutChat(context.Background(),
		store.Chat{ChatID: "99", Username: "admin", Authorized: true}))
	require.NoError(t, chats.PutChat(context.Background(),
		store.Chat{ChatID: "1", Username: "user", Authorized: true}))
	require.NoError(t, catalog.Put(context.Background(),
		content.Article{Slug: "a", Title: "A", Body: "x"}))

	// non-admin gets nothing
	resps := handle(t, rtr, "1", "/list")
	assert.Empty(t, resps)

	resps = handle(t, rtr, "99", "/list")
	require.Len(t, resps, 1)
	assert.Contains(t, resps[0].Text, "id: 1, username: user")

	resps = handle(t, rtr, "99", "/stats")
	require.Len(t, resps, 1)
	assert.Contains(t, resps[0].Text, "articles in catalog: 1")
	assert.Contains(t, resps[0].Text, "hits: 4, misses: 2")

	resps = handle(t, rtr, "99", "/delete 1")
	require.Len(t, resps, 1)
	assert.Contains(t, resps[0].Text, "deleted")

	_, err := chats.GetChat(context.Background(), "1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
