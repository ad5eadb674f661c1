package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/wadjakorntonsri/go-bookmarks/pkg/adapters/handler"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/adapters/notify"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/config"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/core/services"
)

type testClient struct {
	t      *testing.T
	client *http.Client
	base   string
	token  string
}

func (c *testClient) do(method, path string, payload interface{}) *http.Response {
	c.t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			c.t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, c.base+path, body)
	if err != nil {
		c.t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func decode(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func registerAndLogin(t *testing.T, c *testClient, username, email, password string) (access, refresh string) {
	t.Helper()

	resp := c.do(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	})
	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("register %s: expected 201, got %d: %s", username, resp.StatusCode, body)
	}
	resp.Body.Close()

	resp = c.do(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d", username, resp.StatusCode)
	}
	var login struct {
		User struct {
			Access  string `json:"access"`
			Refresh string `json:"refresh"`
		} `json:"user"`
	}
	decode(t, resp, &login)
	if login.User.Access == "" || login.User.Refresh == "" {
		t.Fatalf("login %s: missing tokens", username)
	}
	return login.User.Access, login.User.Refresh
}

func TestIntegration(t *testing.T) {
	repo, err := sqlite.NewSQLiteRepository("file:e2e?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("failed to init db: %v", err)
	}
	defer repo.Close()

	log := zerolog.Nop()
	cfg := &config.Config{
		BaseURL:         "http://sho.rt",
		AppEnv:          "test",
		JWTSecret:       "e2e-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
		FrontendURL:     "http://localhost:3000",
	}

	bookmarkService := services.NewBookmarkService(repo)
	authService := services.NewAuthService(repo, notify.NewLogNotifier(log), log, cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	server := httptest.NewServer(handler.NewRouter(cfg, bookmarkService, authService, log))
	defer server.Close()

	client := server.Client()
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}

	alice := &testClient{t: t, client: client, base: server.URL}
	aliceAccess, aliceRefresh := registerAndLogin(t, alice, "alice", "alice@example.com", "password1")
	alice.token = aliceAccess

	// Create a bookmark.
	resp := alice.do(http.MethodPost, "/api/v1/bookmarks", map[string]string{
		"url":  "https://example.com/article",
		"body": "read later",
	})
	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("create: expected 201, got %d: %s", resp.StatusCode, body)
	}
	var created struct {
		ID        int64  `json:"id"`
		URL       string `json:"url"`
		ShortURL  string `json:"short_url"`
		ShortCode string `json:"short_code"`
		Visits    int64  `json:"visits"`
	}
	decode(t, resp, &created)
	if len(created.ShortCode) != 3 {
		t.Errorf("short code %q should have 3 characters", created.ShortCode)
	}
	if created.ShortURL != cfg.BaseURL+"/"+created.ShortCode {
		t.Errorf("short_url = %q, want %q", created.ShortURL, cfg.BaseURL+"/"+created.ShortCode)
	}
	if created.Visits != 0 {
		t.Errorf("new bookmark visits = %d, want 0", created.Visits)
	}

	// Duplicate URL is rejected.
	resp = alice.do(http.MethodPost, "/api/v1/bookmarks", map[string]string{"url": "https://example.com/article"})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("duplicate url: expected 409, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Redirect counts the visit and is unauthenticated.
	redirectResp, err := client.Get(server.URL + "/" + created.ShortCode)
	if err != nil {
		t.Fatal(err)
	}
	if redirectResp.StatusCode != http.StatusFound {
		t.Errorf("redirect: expected 302, got %d", redirectResp.StatusCode)
	}
	if loc := redirectResp.Header.Get("Location"); loc != "https://example.com/article" {
		t.Errorf("redirect location = %q", loc)
	}
	redirectResp.Body.Close()

	resp = alice.do(http.MethodGet, fmt.Sprintf("/api/v1/bookmarks/%d", created.ID), nil)
	var fetched struct {
		Visits int64 `json:"visits"`
	}
	decode(t, resp, &fetched)
	if fetched.Visits != 1 {
		t.Errorf("visits after redirect = %d, want 1", fetched.Visits)
	}

	// Unknown code gets a JSON 404.
	resp, err = client.Get(server.URL + "/zzz")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown code: expected 404, got %d", resp.StatusCode)
	}
	var notFound map[string]string
	decode(t, resp, &notFound)
	if notFound["Error"] != "Not found" {
		t.Errorf("unknown code body = %v", notFound)
	}

	// A second user cannot see or touch the first user's bookmark.
	bob := &testClient{t: t, client: client, base: server.URL}
	bob.token, _ = registerAndLogin(t, bob, "bob42", "bob@example.com", "password2")

	resp = bob.do(http.MethodGet, fmt.Sprintf("/api/v1/bookmarks/%d", created.ID), nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("foreign get: expected 404, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = bob.do(http.MethodPut, fmt.Sprintf("/api/v1/bookmarks/%d", created.ID), map[string]string{
		"url": "https://attacker.example",
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("foreign update: expected 404, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = bob.do(http.MethodGet, "/api/v1/bookmarks", nil)
	var bobList struct {
		Results []json.RawMessage `json:"results"`
		Meta    struct {
			Total int64 `json:"total"`
		} `json:"meta"`
	}
	decode(t, resp, &bobList)
	if len(bobList.Results) != 0 || bobList.Meta.Total != 0 {
		t.Errorf("bob should see no bookmarks, got %d (total %d)", len(bobList.Results), bobList.Meta.Total)
	}

	// Owner update keeps the code.
	resp = alice.do(http.MethodPut, fmt.Sprintf("/api/v1/bookmarks/%d", created.ID), map[string]string{
		"url":  "https://example.com/updated",
		"body": "done",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update: expected 200, got %d", resp.StatusCode)
	}
	var updated struct {
		URL       string `json:"url"`
		ShortCode string `json:"short_code"`
	}
	decode(t, resp, &updated)
	if updated.ShortCode != created.ShortCode {
		t.Errorf("update changed short code: %q -> %q", created.ShortCode, updated.ShortCode)
	}

	// Stats reflect the counted visit.
	resp = alice.do(http.MethodGet, "/api/v1/bookmarks/stats", nil)
	var stats struct {
		Stats []struct {
			ID     int64  `json:"id"`
			Short  string `json:"short"`
			Visits int64  `json:"visits"`
		} `json:"stats"`
	}
	decode(t, resp, &stats)
	if len(stats.Stats) != 1 {
		t.Fatalf("stats: expected 1 entry, got %d", len(stats.Stats))
	}
	if stats.Stats[0].Visits != 1 {
		t.Errorf("stats visits = %d, want 1", stats.Stats[0].Visits)
	}

	// Profile and token refresh.
	resp = alice.do(http.MethodGet, "/api/v1/auth/me", nil)
	var me map[string]string
	decode(t, resp, &me)
	if me["username"] != "alice" || me["email"] != "alice@example.com" {
		t.Errorf("me = %v", me)
	}

	refresher := &testClient{t: t, client: client, base: server.URL, token: aliceRefresh}
	resp = refresher.do(http.MethodPost, "/api/v1/auth/token/refresh", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("refresh: expected 200, got %d", resp.StatusCode)
	}
	var refreshed struct {
		Access string `json:"access"`
	}
	decode(t, resp, &refreshed)
	if refreshed.Access == "" {
		t.Error("refresh returned empty access token")
	}

	// A refresh token is not an access token.
	resp = refresher.do(http.MethodGet, "/api/v1/auth/me", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("refresh token on protected route: expected 401, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Protected routes reject anonymous callers.
	anon := &testClient{t: t, client: client, base: server.URL}
	resp = anon.do(http.MethodGet, "/api/v1/bookmarks", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("anonymous list: expected 401, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Delete, then the bookmark and its code are gone.
	resp = alice.do(http.MethodDelete, fmt.Sprintf("/api/v1/bookmarks/%d", created.ID), nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete: expected 204, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = alice.do(http.MethodGet, fmt.Sprintf("/api/v1/bookmarks/%d", created.ID), nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("get after delete: expected 404, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp, err = client.Get(server.URL + "/" + created.ShortCode)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("redirect after delete: expected 404, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}
