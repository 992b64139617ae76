package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"justwatcharr/internal/config"
	"justwatcharr/internal/logging"
	"justwatcharr/internal/services"
)

func TestDeliverRetriesThroughRateLimits(t *testing.T) {
	var (
		mu       sync.Mutex
		attempts []time.Time
		bodies   []string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload, _ := io.ReadAll(r.Body)
		var msg map[string]string
		if err := json.Unmarshal(payload, &msg); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		mu.Lock()
		attempts = append(attempts, time.Now())
		bodies = append(bodies, msg["content"])
		n := len(attempts)
		mu.Unlock()

		if got := r.Header.Get("Authorization"); got != "Bot secret" {
			t.Errorf("Authorization = %q, want %q", got, "Bot secret")
		}
		if n <= 2 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"message":"You are being rate limited.","retry_after":0.05,"global":false}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"id":"1"}`))
	}))
	defer server.Close()

	svc := NewDiscordService(server.URL, "secret", "42", server.Client(), logging.NewNop())
	if err := svc.NotifyAvailable(context.Background(), "Radarr", "Alpha", []string{"Netflix", "Hulu"}); err != nil {
		t.Fatalf("NotifyAvailable: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(attempts) != 3 {
		t.Fatalf("attempts = %d, want 3", len(attempts))
	}
	for i := 1; i < len(attempts); i++ {
		if gap := attempts[i].Sub(attempts[i-1]); gap < 40*time.Millisecond {
			t.Errorf("attempt %d arrived after %v, want >= 40ms backoff", i, gap)
		}
	}
	want := "**Radarr**: Alpha: Available on Netflix, Hulu"
	for i, body := range bodies {
		if body != want {
			t.Errorf("attempt %d content = %q, want %q", i, body, want)
		}
	}
}

func TestDeliverRejectedIsNotRetried(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"Missing Access"}`))
	}))
	defer server.Close()

	svc := NewDiscordService(server.URL, "secret", "42", server.Client(), logging.NewNop())
	err := svc.NotifyMonitoring(context.Background(), "Sonarr", "Beta")
	if !errors.Is(err, services.ErrRemote) {
		t.Fatalf("err = %v, want ErrRemote", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestDeliverRateLimitHonorsContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "60")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	svc := NewDiscordService(server.URL, "secret", "42", server.Client(), logging.NewNop())
	err := svc.Test(ctx)
	if !errors.Is(err, services.ErrRateLimited) {
		t.Fatalf("err = %v, want ErrRateLimited", err)
	}
}

func TestUnmonitoredMessageFormat(t *testing.T) {
	var content string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload, _ := io.ReadAll(r.Body)
		var msg map[string]string
		_ = json.Unmarshal(payload, &msg)
		content = msg["content"]
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	svc := NewDiscordService(server.URL, "secret", "42", server.Client(), logging.NewNop())
	if err := svc.NotifyUnmonitored(context.Background(), "Radarr", "Alpha", 2); err != nil {
		t.Fatalf("NotifyUnmonitored: %v", err)
	}
	want := "**Radarr**: Alpha: Unmonitored, 2 local file(s) deleted"
	if content != want {
		t.Fatalf("content = %q, want %q", content, want)
	}
}

func TestNewServiceWithoutTokenIsNoop(t *testing.T) {
	cfg := config.Default()
	cfg.Discord.BotToken = ""
	svc := NewService(context.Background(), &cfg, logging.NewNop())
	if _, ok := svc.(noopService); !ok {
		t.Fatalf("service = %T, want noopService", svc)
	}
	if err := svc.NotifyAvailable(context.Background(), "Radarr", "Alpha", nil); err != nil {
		t.Fatalf("noop NotifyAvailable: %v", err)
	}
}

func TestNewServiceProbeFailureIsNonFatal(t *testing.T) {
	var probed bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/users/@me" {
			probed = true
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Discord.BotToken = "secret"
	cfg.Discord.ChannelID = "42"
	cfg.Discord.BaseURL = server.URL

	svc := NewService(context.Background(), &cfg, logging.NewNop())
	if !probed {
		t.Fatal("expected credential probe")
	}
	if err := svc.Test(context.Background()); err != nil {
		t.Fatalf("Test after failed probe: %v", err)
	}
}
