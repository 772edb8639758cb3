package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/atharvakonge/paper-trader/internal/apperrs"
	"github.com/atharvakonge/paper-trader/internal/auth"
	"github.com/atharvakonge/paper-trader/internal/config"
	"github.com/atharvakonge/paper-trader/internal/db"
	"github.com/atharvakonge/paper-trader/internal/ledger"
	"github.com/atharvakonge/paper-trader/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
	decimal.MarshalJSONWithoutQuotes = true
}

type fakeMarket struct {
	mu       sync.Mutex
	price    decimal.Decimal
	err      error
	bars     []models.Bar
	lastFrom time.Time
	lastTo   time.Time
}

func (f *fakeMarket) History(_ context.Context, symbol string, from, to time.Time) ([]models.Bar, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastFrom, f.lastTo = from, to
	if f.err != nil {
		return nil, f.err
	}
	return f.bars, nil
}

func (f *fakeMarket) Latest(_ context.Context, symbol string) (models.Quote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return models.Quote{}, f.err
	}
	return models.Quote{Symbol: symbol, Price: f.price, AsOf: time.Date(2025, 7, 31, 0, 0, 0, 0, time.UTC)}, nil
}

type failingPing struct {
	*db.MemoryStore
}

func (failingPing) Ping(context.Context) error { return apperrs.ErrNotFound }

type testServer struct {
	router *gin.Engine
	store  db.Store
	market *fakeMarket
	hub    *Hub
	h      *Handler
}

func newTestServer(t testing.TB) *testServer {
	t.Helper()
	return newTestServerWithStore(t, db.NewMemoryStore())
}

func newTestServerWithStore(t testing.TB, store db.Store) *testServer {
	t.Helper()

	market := &fakeMarket{price: decimal.RequireFromString("123.45")}
	hub := NewHub()
	t.Cleanup(hub.Close)

	h := New(Deps{
		Ledger:   ledger.NewService(store, market, hub, 500),
		Accounts: auth.NewService(store, 4),
		Sessions: auth.NewSessionManager(config.Session{
			Secret:      "test-secret",
			CookieName:  "session",
			TTL:         24 * time.Hour,
			RememberTTL: 30 * 24 * time.Hour,
		}, false),
		Market:        market,
		Store:         store,
		Hub:           hub,
		HistoryWindow: 90 * 24 * time.Hour,
	})

	return &testServer{
		router: NewRouter(h, t.TempDir()),
		store:  store,
		market: market,
		hub:    hub,
		h:      h,
	}
}

func (s *testServer) do(t testing.TB, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// signup registers and logs in a user and returns the session cookie.
func (s *testServer) signup(t testing.TB, username string) *http.Cookie {
	t.Helper()

	email := username + "@test.com"
	w := s.do(t, http.MethodPost, "/api/register", gin.H{"email": email, "username": username, "password": "pw12345"})
	if w.Code != http.StatusCreated {
		t.Fatalf("register %s: expected 201, got %d: %s", username, w.Code, w.Body.String())
	}

	w = s.do(t, http.MethodPost, "/api/login", gin.H{"email": email, "password": "pw12345"})
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d: %s", username, w.Code, w.Body.String())
	}
	for _, c := range w.Result().Cookies() {
		if c.Name == "session" {
			return c
		}
	}
	t.Fatal("login did not set a session cookie")
	return nil
}

func decode(t testing.TB, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func errorOf(t testing.TB, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	decode(t, w, &body)
	return body.Error
}
