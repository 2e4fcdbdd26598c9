package infra

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestCacheSetGet(t *testing.T) {
	c := NewCache(time.Minute)
	if _, ok := c.Get("missing"); ok {
		t.Error("expected miss for unknown key")
	}
	c.Set("k", 42)
	v, ok := c.Get("k")
	if !ok || v.(int) != 42 {
		t.Errorf("expected 42, got %v (ok=%v)", v, ok)
	}
	c.Invalidate("k")
	if _, ok := c.Get("k"); ok {
		t.Error("expected miss after Invalidate")
	}
}

func TestCacheExpiry(t *testing.T) {
	c := NewCache(time.Minute)
	c.SetWithTTL("k", "v", -time.Second) // already expired
	if _, ok := c.Get("k"); ok {
		t.Error("expected expired entry to miss")
	}
}

func TestRateLimiterAllowsBurst(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := rl.Wait(ctx); err != nil {
			t.Fatalf("token %d: %v", i, err)
		}
	}
}

func TestRateLimiterContextCancel(t *testing.T) {
	rl := NewRateLimiter(1, time.Hour)
	ctx := context.Background()
	if err := rl.Wait(ctx); err != nil {
		t.Fatal(err)
	}
	cctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	if err := rl.Wait(cctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestDoGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Test") != "yes" {
			t.Error("custom header not forwarded")
		}
		if r.Header.Get("User-Agent") == "" {
			t.Error("expected default user agent")
		}
		io.WriteString(w, "ok")
	}))
	defer srv.Close()

	body, status, err := DoGet(context.Background(), srv.URL, map[string]string{"X-Test": "yes"})
	if err != nil {
		t.Fatal(err)
	}
	defer body.Close()
	if status != http.StatusOK {
		t.Errorf("expected 200, got %d", status)
	}
	data, _ := io.ReadAll(body)
	if string(data) != "ok" {
		t.Errorf("expected body %q, got %q", "ok", string(data))
	}
}

func TestDoGetHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, status, err := DoGet(context.Background(), srv.URL, nil)
	if err == nil {
		t.Fatal("expected error for 429")
	}
	var httpErr *ErrHTTP
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *ErrHTTP, got %T", err)
	}
	if status != http.StatusTooManyRequests || httpErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d/%d", status, httpErr.StatusCode)
	}
}
