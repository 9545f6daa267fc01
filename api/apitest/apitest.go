// Package apitest builds an echo server over in-memory services for route
// module tests. Every route module is linked in, as in the server binary.
package apitest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"cafe.GO/api"
	_ "cafe.GO/api/account"
	_ "cafe.GO/api/admin"
	_ "cafe.GO/api/cart"
	_ "cafe.GO/api/catalog"
	_ "cafe.GO/api/chat"
	_ "cafe.GO/api/checkout"
	_ "cafe.GO/api/favorites"
	_ "cafe.GO/api/graphql"
	"cafe.GO/bootstrap"
	"cafe.GO/config"
	"cafe.GO/core/auth"
	"cafe.GO/core/notify"
	"cafe.GO/core/profile"
	"cafe.GO/core/storage"
	"cafe.GO/core/validate"
	"cafe.GO/model/catalog"
	entity "cafe.GO/model/entity"
	"cafe.GO/service/mailer"
	"cafe.GO/service/payment"
)

// Server is an echo instance with every registered route applied.
type Server struct {
	Echo *echo.Echo
	Deps *api.Deps

	mu    sync.Mutex
	calls map[string][]json.RawMessage
}

// New opens an in-memory database, fakes the hosted functions and applies
// the registered routes and /api modules.
func New(t *testing.T) *Server {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(entity.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	s := &Server{calls: map[string][]json.RawMessage{}}
	functions := httptest.NewServer(http.HandlerFunc(s.serveFunction))
	t.Cleanup(functions.Close)

	cfg := &config.Config{
		AppName:       "cafe-test",
		PublicURL:     "http://shop.test",
		MediaDir:      t.TempDir(),
		MediaUrl:      "/media/",
		FunctionsURL:  functions.URL,
		FunctionsKey:  "test-key",
		RemoteTimeout: 5 * time.Second,
		CheckoutTTL:   30 * time.Minute,
		SessionTTL:    24 * time.Hour,
	}
	d := bootstrap.Wire(db, cfg, storage.NewBridge(storage.NewMemory(), nil), notify.NewRouter(), zap.NewNop())

	e := echo.New()
	e.Validator = validate.New()
	e.Use(profile.Middleware())
	e.Use(auth.CustomerSession(d.Auth))
	api.ApplyRoutes(e, d)
	g := e.Group("/api")
	g.Use(auth.Middleware())
	api.ApplyModules(g, d)

	s.Echo = e
	s.Deps = d
	return s
}

func (s *Server) serveFunction(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	name := r.URL.Path[1:]
	s.mu.Lock()
	s.calls[name] = append(s.calls[name], body)
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch name {
	case payment.FunctionName:
		_, _ = w.Write([]byte(`{"id":"cs_test_1","url":"https://pay.test/cs_test_1"}`))
	case mailer.FunctionName:
		_, _ = w.Write([]byte(`{"success":true,"data":{"id":"em_1"}}`))
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"success":false,"error":"no such function"}`))
	}
}

// Calls returns the request bodies the named hosted function received.
func (s *Server) Calls(name string) []json.RawMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]json.RawMessage(nil), s.calls[name]...)
}

// Seed stores a product with the given id, category and price.
func (s *Server) Seed(t *testing.T, id, name, category, price string) catalog.Product {
	t.Helper()
	p, err := s.Deps.Catalog.Create(context.Background(), catalog.Product{
		ID:          id,
		Name:        name,
		Description: name + " from the cafe kitchen",
		Price:       decimal.RequireFromString(price),
		Category:    category,
		Images:      []string{"https://img.test/" + id + ".jpg"},
	})
	if err != nil {
		t.Fatalf("seed %s: %v", id, err)
	}
	return p
}

// Client issues requests as one visitor profile, carrying the session
// cookie once signed in.
type Client struct {
	s       *Server
	Profile string
	Token   string
}

// NewClient returns a client with a fresh profile id.
func (s *Server) NewClient() *Client {
	return &Client{s: s, Profile: uuid.NewString()}
}

// Do sends a JSON request; body may be nil.
func (c *Client) Do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encode body: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	return c.Send(req)
}

// Send stamps the client's profile and session on req and serves it.
func (c *Client) Send(req *http.Request) *httptest.ResponseRecorder {
	req.Header.Set(profile.HeaderName, c.Profile)
	if c.Token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+c.Token)
	}
	rec := httptest.NewRecorder()
	c.s.Echo.ServeHTTP(rec, req)
	return rec
}

// SignUp registers a customer and keeps the session token.
func (c *Client) SignUp(t *testing.T, email string) {
	t.Helper()
	rec := c.Do(t, http.MethodPost, "/auth/signup", map[string]string{"email": email, "password": "secret123", "name": "Test Customer"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup status = %d body=%s", rec.Code, rec.Body.String())
	}
	var out struct {
		Token string `json:"token"`
	}
	Decode(t, rec, &out)
	c.Token = out.Token
}

// Decode unmarshals the recorded JSON body into v.
func Decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}
