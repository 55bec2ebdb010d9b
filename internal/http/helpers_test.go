package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rogerio-castellano/inventory-changelog/internal/auth"
	api "github.com/rogerio-castellano/inventory-changelog/internal/http"
	"github.com/rogerio-castellano/inventory-changelog/internal/http/handlers"
	rl "github.com/rogerio-castellano/inventory-changelog/internal/http/rate_limiter"
	"github.com/rogerio-castellano/inventory-changelog/internal/inventory"
	"github.com/rogerio-castellano/inventory-changelog/internal/metrics"
	"github.com/rogerio-castellano/inventory-changelog/internal/repo"
	"golang.org/x/crypto/bcrypt"
)

const (
	staffName     = "admin"
	staffPassword = "admin-secret"
	userPassword  = "s3cret-pass"
)

type testEnv struct {
	t      *testing.T
	router http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithLimiter(t, rl.New(1000, 1000))
}

func newTestEnvWithLimiter(t *testing.T, limiter *rl.Limiter) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := repo.NewInMemoryStore()
	m := metrics.New()

	inv := inventory.NewService(store, inventory.WithLogger(logger), inventory.WithObserver(m))
	authSvc := auth.NewService(store.Users(), auth.NewMemorySessionStore(), auth.NewTokenManager("test-secret", time.Hour),
		auth.WithBcryptCost(bcrypt.MinCost),
		auth.WithLogger(logger),
	)
	if _, err := authSvc.EnsureStaffUser(context.Background(), staffName, "admin@example.com", staffPassword); err != nil {
		t.Fatalf("bootstrap staff: %v", err)
	}

	router := api.NewRouter(api.RouterConfig{
		Server:  handlers.NewServer(inv, authSvc, logger),
		Auth:    authSvc,
		Limiter: limiter,
		Metrics: m,
		Logger:  logger,
	})
	return &testEnv{t: t, router: router}
}

func (e *testEnv) serve(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// do sends body as JSON unless it is nil.
func (e *testEnv) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	e.t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			e.t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	return e.serve(req, token)
}

func (e *testEnv) upload(path, filename string, content []byte, token string) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		e.t.Fatalf("fail to create form file %v: %v", filename, err)
	}
	if _, err := part.Write(content); err != nil {
		e.t.Fatalf("fail to write file %v: %v", filename, err)
	}
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return e.serve(req, token)
}

func (e *testEnv) login(username, password string) string {
	e.t.Helper()
	w := e.do(http.MethodPost, "/login", handlers.UserLogin{Username: username, Password: password}, "")
	if w.Code != http.StatusOK {
		e.t.Fatalf("login %s: expected 200, got %d: %s", username, w.Code, w.Body.String())
	}
	return decode[handlers.LoginResult](e.t, w).Token
}

// registerAndLogin creates a regular account and returns its token.
func (e *testEnv) registerAndLogin(username string) string {
	e.t.Helper()
	w := e.do(http.MethodPost, "/register", handlers.RegisterRequest{
		Username: username, Email: username + "@example.com", Password: userPassword,
	}, "")
	if w.Code != http.StatusCreated {
		e.t.Fatalf("register %s: expected 201, got %d: %s", username, w.Code, w.Body.String())
	}
	return e.login(username, userPassword)
}

func (e *testEnv) createItem(token string, body map[string]any) handlers.ItemResponse {
	e.t.Helper()
	w := e.do(http.MethodPost, "/items", body, token)
	if w.Code != http.StatusCreated {
		e.t.Fatalf("create item: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	return decode[handlers.ItemResponse](e.t, w)
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return v
}

func itemPath(id int64) string {
	return fmt.Sprintf("/items/%d", id)
}

func hasFieldError(resp handlers.ValidationErrorResponse, field string) bool {
	for _, f := range resp.Errors {
		if f.Field == field {
			return true
		}
	}
	return false
}
