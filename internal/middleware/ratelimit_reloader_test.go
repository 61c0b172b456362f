package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/benvon/mindful-harmony/internal/models"
	"go.uber.org/zap"
)

type mockRatelimitStore struct {
	mu    sync.Mutex
	rates map[string]string
	err   error
	saved []models.RatelimitConfig
}

func (m *mockRatelimitStore) Get(_ context.Context, key string) (*models.RatelimitConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	rate, ok := m.rates[key]
	if !ok {
		return nil, nil
	}
	return &models.RatelimitConfig{ConfigKey: key, Rate: rate}, nil
}

func (m *mockRatelimitStore) Set(_ context.Context, c *models.RatelimitConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, *c)
	return nil
}

func TestRateLimitReloader(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		store     *mockRatelimitStore
		configKey string
		wantRate  string
		allowed   int
		wantSaved bool
	}{
		{
			name:      "rate from database",
			store:     &mockRatelimitStore{rates: map[string]string{"ai": "2-M"}},
			configKey: models.AIConfigKey,
			wantRate:  "2-M",
			allowed:   2,
		},
		{
			name:      "missing config saves default",
			store:     &mockRatelimitStore{rates: map[string]string{}},
			configKey: models.DefaultConfigKey,
			wantRate:  "3-M",
			allowed:   3,
			wantSaved: true,
		},
		{
			name:      "database error uses default",
			store:     &mockRatelimitStore{err: errors.New("db down")},
			configKey: models.DefaultConfigKey,
			wantRate:  "3-M",
			allowed:   3,
		},
		{
			name:      "unparseable rate uses default",
			store:     &mockRatelimitStore{rates: map[string]string{"default": "lots"}},
			configKey: models.DefaultConfigKey,
			wantRate:  "3-M",
			allowed:   3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			limiterStore, err := NewLimiterStore(nil, tt.configKey)
			if err != nil {
				t.Fatalf("NewLimiterStore: %v", err)
			}
			rl := NewRateLimitReloader(limiterStore, tt.store, tt.configKey, "3-M", zap.NewNop(), 0)
			h := rl.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			if rl.Rate() != tt.wantRate {
				t.Errorf("Rate() = %q, want %q", rl.Rate(), tt.wantRate)
			}

			for i := 0; i <= tt.allowed; i++ {
				w := httptest.NewRecorder()
				h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/activities/recommend", nil))
				want := http.StatusOK
				if i == tt.allowed {
					want = http.StatusTooManyRequests
				}
				if w.Code != want {
					t.Fatalf("request %d: status = %d, want %d", i+1, w.Code, want)
				}
			}

			if got := len(tt.store.saved) > 0; got != tt.wantSaved {
				t.Errorf("default saved = %v, want %v", got, tt.wantSaved)
			}
		})
	}
}

func TestRateLimitReloaderKeysByClientIP(t *testing.T) {
	t.Parallel()

	limiterStore, err := NewLimiterStore(nil, models.DefaultConfigKey)
	if err != nil {
		t.Fatalf("NewLimiterStore: %v", err)
	}
	rl := NewRateLimitReloader(limiterStore, &mockRatelimitStore{rates: map[string]string{"default": "1-M"}}, "", "", zap.NewNop(), 0)
	h := rl.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	for _, ip := range []string{"10.0.0.1", "10.0.0.2"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-For", ip)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("first request from %s: status = %d", ip, w.Code)
		}
	}
}

func TestRateLimitReloaderSharedAcrossRoutersAndReloads(t *testing.T) {
	t.Parallel()

	limiterStore, err := NewLimiterStore(nil, models.AIConfigKey)
	if err != nil {
		t.Fatalf("NewLimiterStore: %v", err)
	}
	store := &mockRatelimitStore{rates: map[string]string{"ai": "1-M"}}
	rl := NewRateLimitReloader(limiterStore, store, models.AIConfigKey, "", zap.NewNop(), 0)
	mw := rl.Middleware()
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	journal, voice := mw(ok), mw(ok)

	serve := func(h http.Handler, path string) int {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, path, nil))
		return w.Code
	}
	if got := serve(journal, "/api/journal"); got != http.StatusOK {
		t.Fatalf("first journal request: status = %d", got)
	}
	if got := serve(voice, "/api/voice/transcribe"); got != http.StatusTooManyRequests {
		t.Fatalf("voice request after journal: status = %d, want 429", got)
	}

	store.mu.Lock()
	store.rates["ai"] = "50-M"
	store.mu.Unlock()
	rl.load(context.Background())

	if rl.Rate() != "50-M" {
		t.Fatalf("Rate() after reload = %q, want 50-M", rl.Rate())
	}
	if got := serve(voice, "/api/voice/transcribe"); got != http.StatusOK {
		t.Errorf("voice request after reload: status = %d, want 200", got)
	}
}
