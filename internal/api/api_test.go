package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"loungebook/internal/auth"
	"loungebook/internal/config"
	"loungebook/internal/directory"
	"loungebook/internal/events"
	"loungebook/internal/ledger"
	"loungebook/internal/store"
)

type testServer struct {
	Handler http.Handler
}

func setupTestServer(t *testing.T) *testServer {
	return newTestServer(t, store.NewMemoryStore(), config.ServerConfig{Address: ":0"})
}

func newTestServer(t *testing.T, s store.Store, cfg config.ServerConfig) *testServer {
	t.Helper()
	bus := events.NewBus()
	logger := zerolog.Nop()

	dir := directory.New(s, bus, logger)
	led := ledger.New(s, bus, logger)
	provider := auth.NewLocalProvider(s, logger)

	server := NewServer(dir, led, provider, cfg, logger)
	return &testServer{Handler: server.Handler()}
}

func (ts *testServer) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf []byte
	if s, ok := body.(string); ok {
		buf = []byte(s)
	} else if body != nil {
		var err error
		buf, err = json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
	}

	req := httptest.NewRequest(method, target, bytes.NewReader(buf))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	ts.Handler.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}
