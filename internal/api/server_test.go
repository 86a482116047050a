package api

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"loungebook/internal/config"
	"loungebook/internal/store"
)

// failingStore errors on every operation, standing in for a broken
// storage backend.
type failingStore struct {
	err error
}

func (f *failingStore) Load(context.Context, string) ([]byte, error) {
	return nil, f.err
}

func (f *failingStore) Save(context.Context, string, []byte) error {
	return f.err
}

func TestStoreFailureSurfacesAsInternalError(t *testing.T) {
	ts := newTestServer(t, &failingStore{err: errors.New("disk gone")}, config.ServerConfig{Address: ":0"})

	tests := []struct {
		name   string
		target string
		body   any
	}{
		{
			name:   "create booking",
			target: "/bookings",
			body:   map[string]string{"userEmail": "a@x.com", "date": "2025-06-01", "timeSlot": "09:00-10:00"},
		},
		{
			name:   "auth",
			target: "/auth",
			body:   map[string]string{"email": "a@x.com", "name": "Alice", "contact": "123"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(t, http.MethodPost, tt.target, tt.body)
			if w.Code != http.StatusInternalServerError {
				t.Fatalf("expected status 500, got %d", w.Code)
			}
			body := decodeBody(t, w)
			if body["error"] != "Internal server error" {
				t.Errorf("unexpected error message: %v", body["error"])
			}
		})
	}
}

func TestRateLimitRejectsBurstOverflow(t *testing.T) {
	cfg := config.ServerConfig{Address: ":0"}
	cfg.RateLimit.Enabled = true
	cfg.RateLimit.Burst = 1

	ts := newTestServer(t, store.NewMemoryStore(), cfg)

	w := ts.do(t, http.MethodGet, "/bookings", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("first request: expected status 200, got %d", w.Code)
	}

	w = ts.do(t, http.MethodGet, "/bookings", nil)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: expected status 429, got %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["error"] != "too many requests" {
		t.Errorf("unexpected error message: %v", body["error"])
	}
}

func TestRateLimitDisabledByDefault(t *testing.T) {
	ts := setupTestServer(t)

	for i := 0; i < 5; i++ {
		w := ts.do(t, http.MethodGet, "/bookings", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: expected status 200, got %d", i, w.Code)
		}
	}
}
