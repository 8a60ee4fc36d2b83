package web

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"indigo/internal/catalog"
	"indigo/internal/config"
	"indigo/internal/database"
	"indigo/internal/events"
	"indigo/internal/models"
	"indigo/internal/repository"
	"indigo/internal/session"
	"indigo/internal/view"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const testCookie = "indigo_session"

type stubRecommender struct {
	mu    sync.Mutex
	moods []string
}

func (r *stubRecommender) Recommend(_ context.Context, mood string, _ []models.MenuItem) string {
	r.mu.Lock()
	r.moods = append(r.moods, mood)
	r.mu.Unlock()
	return "נסו את ההפוך"
}

type testEnv struct {
	db       *database.DB
	sessions *session.Registry
	server   *httptest.Server
	client   *http.Client
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := zerolog.Nop()

	db, err := database.NewDB(filepath.Join(t.TempDir(), "menu.db"), &logger)
	require.NoError(t, err)

	bus := events.NewEventBus()
	db.SetEventPublisher(bus)
	feed := catalog.NewFeed(db, repository.NewMemorySnapshotCache(0), &logger)
	feed.Attach(bus)
	live := catalog.NewLive(feed, db)

	recommender := &stubRecommender{}
	sessions := session.NewRegistry(func(onChange func()) *view.Controller {
		return view.NewController(live, recommender, &logger, view.WithOnChange(onChange))
	}, time.Hour, &logger)

	srv := NewServer(config.HTTPConfig{PublicURL: "https://menu.indigo.test/"}, testCookie, sessions, db, &logger)
	ts := httptest.NewServer(srv.Handler())

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := ts.Client()
	client.Jar = jar
	client.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }

	t.Cleanup(func() {
		ts.Close()
		_ = sessions.Close()
		_ = feed.Close()
		_ = db.Close()
	})
	return &testEnv{db: db, sessions: sessions, server: ts, client: client}
}

func (e *testEnv) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	res, err := e.client.Get(e.server.URL + path)
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res, string(body)
}

func (e *testEnv) post(t *testing.T, path string, form url.Values) *http.Response {
	t.Helper()
	res, err := e.client.PostForm(e.server.URL+path, form)
	require.NoError(t, err)
	res.Body.Close()
	return res
}

func (e *testEnv) session(t *testing.T) *session.Session {
	t.Helper()
	u, _ := url.Parse(e.server.URL)
	for _, c := range e.client.Jar.Cookies(u) {
		if c.Name == testCookie {
			sess, ok := e.sessions.Get(c.Value)
			require.True(t, ok)
			return sess
		}
	}
	t.Fatal("no session cookie")
	return nil
}

// open loads the page once and waits until the store has been seeded.
func (e *testEnv) open(t *testing.T) *session.Session {
	t.Helper()
	res, _ := e.get(t, "/")
	require.Equal(t, http.StatusOK, res.StatusCode)
	sess := e.session(t)
	require.Eventually(t, func() bool {
		s := sess.Controller().State()
		return !s.Loading && len(s.Items) == len(models.SeedMenu())
	}, 2*time.Second, 10*time.Millisecond)
	return sess
}

func (e *testEnv) login(t *testing.T) {
	t.Helper()
	res := e.post(t, "/admin/pin/open", nil)
	require.Equal(t, http.StatusSeeOther, res.StatusCode)
	res = e.post(t, "/admin/pin", url.Values{"pin": {models.AdminPIN}})
	require.Equal(t, http.StatusSeeOther, res.StatusCode)
	require.True(t, e.session(t).Controller().State().AdminMode)
}

func TestIndex_SeedsAndRenders(t *testing.T) {
	env := newTestEnv(t)
	env.open(t)

	res, body := env.get(t, "/")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "text/html; charset=utf-8", res.Header.Get("Content-Type"))
	assert.NotEmpty(t, res.Header.Get(requestIDHeader))
	assert.Contains(t, body, `dir="rtl"`)
	assert.Contains(t, body, "כריך מוצרלה")
	assert.Contains(t, body, "₪13/15")
	assert.NotContains(t, body, "/items/s1/toggle")

	items, err := env.db.ListItems(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, len(models.SeedMenu()))
}

func TestPin_WrongThenRight(t *testing.T) {
	env := newTestEnv(t)
	sess := env.open(t)

	env.post(t, "/admin/pin/open", nil)
	res := env.post(t, "/admin/pin", url.Values{"pin": {"0000"}})
	assert.Equal(t, http.StatusSeeOther, res.StatusCode)
	assert.Equal(t, "/", res.Header.Get("Location"))

	state := sess.Controller().State()
	assert.False(t, state.AdminMode)
	assert.True(t, state.PinPadOpen())
	assert.Empty(t, state.PinInput)
	assert.Equal(t, []string{models.AlertWrongPassword}, sess.TakeAlerts())

	env.post(t, "/admin/pin", url.Values{"pin": {models.AdminPIN}})
	state = sess.Controller().State()
	assert.True(t, state.AdminMode)
	assert.False(t, state.PinPadOpen())
	assert.Empty(t, sess.TakeAlerts())

	_, body := env.get(t, "/")
	assert.Contains(t, body, "מצב ניהול פעיל")
	assert.Contains(t, body, "https://menu.indigo.test/")
	assert.Contains(t, body, "/items/s1/toggle")

	env.post(t, "/admin/exit", nil)
	assert.False(t, sess.Controller().State().AdminMode)
}

func TestToggle_FlipsOnlyAvailability(t *testing.T) {
	env := newTestEnv(t)
	sess := env.open(t)

	// Customers cannot toggle.
	env.post(t, "/items/d4/toggle", nil)
	items, err := env.db.ListItems(context.Background())
	require.NoError(t, err)
	for _, item := range items {
		assert.True(t, item.Available, item.ID)
	}

	env.login(t)
	env.post(t, "/items/d4/toggle", nil)

	require.Eventually(t, func() bool {
		for _, item := range sess.Controller().State().Items {
			if item.ID == "d4" {
				return !item.Available
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)

	items, err = env.db.ListItems(context.Background())
	require.NoError(t, err)
	for _, want := range models.SeedMenu() {
		if want.ID == "d4" {
			want.Available = false
		}
		got := findByID(items, want.ID)
		require.NotNil(t, got, want.ID)
		assert.Equal(t, want, *got)
	}

	// Customers no longer see the sold-out item.
	env.post(t, "/admin/exit", nil)
	_, body := env.get(t, "/")
	assert.NotContains(t, body, "טירמיסו")
}

func TestEditAddDelete(t *testing.T) {
	env := newTestEnv(t)
	sess := env.open(t)
	env.login(t)
	ctx := context.Background()

	env.post(t, "/items/s1/edit", nil)
	require.NotNil(t, sess.Controller().State().EditingItem)
	env.post(t, "/edit/save", url.Values{"name": {"כריך מוצרלה גדול"}, "price": {"41"}, "description": {"חדש"}})
	assert.Nil(t, sess.Controller().State().EditingItem)

	items, err := env.db.ListItems(ctx)
	require.NoError(t, err)
	edited := findByID(items, "s1")
	require.NotNil(t, edited)
	assert.Equal(t, "כריך מוצרלה גדול", edited.Name)
	assert.Equal(t, "41", edited.Price)
	assert.Equal(t, models.CategorySandwiches, edited.Category)
	assert.Equal(t, "🥪", edited.Image)

	// Missing price: no write, dialog stays open.
	env.post(t, "/categories/pastries/add", nil)
	env.post(t, "/add/save", url.Values{"name": {"עוגת שמרים"}})
	items, err = env.db.ListItems(ctx)
	require.NoError(t, err)
	assert.Len(t, items, len(models.SeedMenu()))
	assert.Equal(t, models.CategoryPastries, sess.Controller().State().AddingToCategory)

	env.post(t, "/add/save", url.Values{"name": {"עוגת שמרים"}, "price": {"25"}, "image": {"🥐"}})
	items, err = env.db.ListItems(ctx)
	require.NoError(t, err)
	assert.Len(t, items, len(models.SeedMenu())+1)
	assert.Empty(t, sess.Controller().State().AddingToCategory)

	env.post(t, "/items/s2/delete", nil)
	require.NotNil(t, sess.Controller().State().ItemToDelete)
	env.post(t, "/delete/confirm", nil)
	items, err = env.db.ListItems(ctx)
	require.NoError(t, err)
	assert.Len(t, items, len(models.SeedMenu()))
	assert.Nil(t, findByID(items, "s2"))
	assert.Nil(t, sess.Controller().State().ItemToDelete)
}

func TestAssistant(t *testing.T) {
	env := newTestEnv(t)
	sess := env.open(t)

	env.post(t, "/assistant/open", nil)
	assert.True(t, sess.Controller().State().AIChatOpen)

	env.post(t, "/assistant/ask", url.Values{"mood": {""}})
	assert.Empty(t, sess.Controller().State().AIResponse)

	env.post(t, "/assistant/ask", url.Values{"mood": {"עייף"}})
	require.Eventually(t, func() bool {
		return sess.Controller().State().AIResponse == "נסו את ההפוך"
	}, 2*time.Second, 10*time.Millisecond)
	assert.False(t, sess.Controller().State().AILoading)

	env.post(t, "/assistant/close", nil)
	assert.False(t, sess.Controller().State().AIChatOpen)
}

func TestMenuJSON(t *testing.T) {
	env := newTestEnv(t)
	env.open(t)
	require.NoError(t, env.db.UpdateAvailability(context.Background(), "dr1", false))

	res, body := env.get(t, "/api/v1/menu")
	require.Equal(t, http.StatusOK, res.StatusCode)

	var payload struct {
		Categories []menuCategory `json:"categories"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &payload))
	require.Len(t, payload.Categories, len(models.Categories))
	assert.Equal(t, models.CategorySandwiches, payload.Categories[0].Key)

	drinks := payload.Categories[len(payload.Categories)-1]
	assert.Equal(t, models.CategoryDrinks, drinks.Key)
	for _, item := range drinks.Items {
		assert.NotEqual(t, "dr1", item.ID)
	}
}

func TestExport(t *testing.T) {
	env := newTestEnv(t)
	env.open(t)

	res, _ := env.get(t, "/admin/export.xlsx")
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	env.login(t)
	res, err := env.client.Get(env.server.URL + "/admin/export.xlsx")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	f, err := excelize.OpenReader(res.Body)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, len(models.SeedMenu())+1)
	assert.Equal(t, exportHeaders, rows[0])
	assert.Equal(t, "s1", rows[1][0])
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)
	res, body := env.get(t, "/healthz")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, `"status":"ok"`)
}

func TestLive_PushesRefresh(t *testing.T) {
	env := newTestEnv(t)
	env.open(t)

	u, _ := url.Parse(env.server.URL)
	header := http.Header{}
	for _, c := range env.client.Jar.Cookies(u) {
		header.Add("Cookie", c.String())
	}

	wsURL := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/live"
	conn, res, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.NoError(t, err)
	defer res.Body.Close()
	defer conn.Close()

	type frame struct {
		kind int
		data []byte
	}
	frames := make(chan frame, 1)
	go func() {
		kind, data, err := conn.ReadMessage()
		if err == nil {
			frames <- frame{kind, data}
		}
	}()

	// The listener registers right after the handshake, so keep changing
	// the view until the first push arrives.
	deadline := time.After(2 * time.Second)
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	open := true
	for {
		if open {
			env.post(t, "/assistant/open", nil)
		} else {
			env.post(t, "/assistant/close", nil)
		}
		open = !open

		select {
		case f := <-frames:
			assert.Equal(t, websocket.TextMessage, f.kind)
			assert.Equal(t, liveRefresh, string(f.data))
			return
		case <-deadline:
			t.Fatal("no refresh pushed")
		case <-ticker.C:
		}
	}
}

func TestLive_UnknownSession(t *testing.T) {
	env := newTestEnv(t)
	wsURL := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/live"
	_, res, err := websocket.DefaultDialer.Dial(wsURL, http.Header{"Cookie": {testCookie + "=nope"}})
	require.Error(t, err)
	require.NotNil(t, res)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func findByID(items []models.MenuItem, id string) *models.MenuItem {
	for i := range items {
		if items[i].ID == id {
			return &items[i]
		}
	}
	return nil
}
