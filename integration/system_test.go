//go:build integration
// +build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"testing"
	"time"
)

var (
	baseURL = getenv("E2E_BASE_URL", "http://localhost:3000")
	apiKey  = getenv("E2E_API_KEY", "your-secret-api-key")
)

func TestSystem_E2E_CRUD(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	waitReady(t, ctx, baseURL+"/readyz")

	suffix := fmt.Sprintf("%d_%d", time.Now().Unix(), rand.Intn(100000))

	var u struct {
		ID    int64  `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	doJSON(t, http.MethodPost, baseURL+"/api/users", map[string]any{
		"name":  "e2e",
		"email": "e2e_" + suffix + "@example.com",
	}, &u, 201)
	if u.ID == 0 {
		t.Fatalf("user id missing: %#v", u)
	}

	doJSON(t, http.MethodPost, baseURL+"/api/users", map[string]any{
		"name":  "dup",
		"email": u.Email,
	}, nil, 400)

	var p struct {
		ID    int64   `json:"id"`
		Name  string  `json:"name"`
		Price float64 `json:"price"`
	}
	doJSON(t, http.MethodPost, baseURL+"/api/products", map[string]any{
		"name":  "Widget " + suffix,
		"price": 9.99,
	}, &p, 201)

	var page struct {
		Total    int              `json:"total"`
		Products []map[string]any `json:"products"`
	}
	doJSON(t, http.MethodGet, baseURL+"/api/products/search?name="+suffix, nil, &page, 200)
	if page.Total != 1 {
		t.Fatalf("search total=%d want=1", page.Total)
	}

	if os.Getenv("E2E_RESTART_API") == "1" {
		restartAPIContainer(t, ctx)
		waitReady(t, ctx, baseURL+"/readyz")
	}

	doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/users/%d", baseURL, u.ID), nil, nil, 200)
	doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/users/%d", baseURL, u.ID), nil, nil, 200)
	doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/products/%d", baseURL, p.ID), nil, nil, 200)
	doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/users/%d", baseURL, u.ID), nil, nil, 404)
}

func TestSystem_E2E_RequiresAPIKey(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, baseURL+"/api/users", nil)
	resp, err := (&http.Client{Timeout: 5 * time.Second}).Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status=%d want=401", resp.StatusCode)
	}
}

func waitReady(t *testing.T, ctx context.Context, url string) {
	t.Helper()
	client := &http.Client{Timeout: 2 * time.Second}

	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		resp, err := client.Do(req)
		if err == nil && resp != nil && resp.StatusCode == 200 {
			_ = resp.Body.Close()
			return
		}
		if resp != nil {
			_ = resp.Body.Close()
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("service not ready: %s", url)
}

func doJSON(t *testing.T, method, url string, body any, out any, want int) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", apiKey)

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		t.Fatalf("%s %s: status=%d want=%d", method, url, resp.StatusCode, want)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
