package middleware

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/worldbinder/backend/internal/auth"
	"github.com/worldbinder/backend/internal/config"
	"go.uber.org/zap"
)

func authTestConfig() *config.Config {
	return &config.Config{
		JWTSecret:  "test-secret",
		CookieName: "wb_token",
	}
}

// whoami echoes the resolved user id so tests can see what the middleware set.
func whoami(c *fiber.Ctx) error {
	return c.SendString(fmt.Sprintf("%d", GetUserID(c)))
}

func issueToken(t *testing.T, cfg *config.Config, userID int64) string {
	t.Helper()
	token, err := auth.GenerateJWT(cfg.JWTSecret, userID, "wallet", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func TestAuthMiddleware_RejectsAnonymous(t *testing.T) {
	cfg := authTestConfig()
	app := fiber.New()
	app.Get("/private", AuthMiddleware(cfg, zap.NewNop()), whoami)

	tests := []struct {
		name   string
		header string
		cookie string
	}{
		{name: "no credentials"},
		{name: "malformed header", header: "Token abc"},
		{name: "garbage bearer", header: "Bearer not-a-jwt"},
		{name: "garbage cookie", cookie: "not-a-jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/private", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: cfg.CookieName, Value: tt.cookie})
			}

			resp, err := app.Test(req)
			if err != nil {
				t.Fatal(err)
			}
			if resp.StatusCode != fiber.StatusUnauthorized {
				t.Errorf("status = %d, want 401", resp.StatusCode)
			}
		})
	}
}

func TestAuthMiddleware_AcceptsBearerAndCookie(t *testing.T) {
	cfg := authTestConfig()
	app := fiber.New()
	app.Get("/private", AuthMiddleware(cfg, zap.NewNop()), whoami)

	token := issueToken(t, cfg, 42)

	for _, via := range []string{"bearer", "cookie"} {
		t.Run(via, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/private", nil)
			if via == "bearer" {
				req.Header.Set("Authorization", "Bearer "+token)
			} else {
				req.AddCookie(&http.Cookie{Name: cfg.CookieName, Value: token})
			}

			resp, err := app.Test(req)
			if err != nil {
				t.Fatal(err)
			}
			if resp.StatusCode != fiber.StatusOK {
				t.Fatalf("status = %d, want 200", resp.StatusCode)
			}
			body, _ := io.ReadAll(resp.Body)
			if string(body) != "42" {
				t.Errorf("user id = %s, want 42", body)
			}
		})
	}
}

func TestOptionalAuthMiddleware(t *testing.T) {
	cfg := authTestConfig()
	app := fiber.New()
	app.Get("/catalog", OptionalAuthMiddleware(cfg), whoami)

	token := issueToken(t, cfg, 7)

	tests := []struct {
		name       string
		header     string
		cookie     string
		wantUserID string
	}{
		{name: "anonymous passes through", wantUserID: "0"},
		{name: "valid bearer identifies caller", header: "Bearer " + token, wantUserID: "7"},
		{name: "valid cookie identifies caller", cookie: token, wantUserID: "7"},
		{name: "bad token treated as anonymous", header: "Bearer not-a-jwt", wantUserID: "0"},
		{name: "malformed header treated as anonymous", header: "Token " + token, wantUserID: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/catalog", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: cfg.CookieName, Value: tt.cookie})
			}

			resp, err := app.Test(req)
			if err != nil {
				t.Fatal(err)
			}
			if resp.StatusCode != fiber.StatusOK {
				t.Fatalf("status = %d, want 200 even without credentials", resp.StatusCode)
			}
			body, _ := io.ReadAll(resp.Body)
			if string(body) != tt.wantUserID {
				t.Errorf("user id = %s, want %s", body, tt.wantUserID)
			}
		})
	}
}
