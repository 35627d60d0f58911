package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bookbot/internal/config"
	"bookbot/internal/conversation"
	"bookbot/internal/session"
)

type capture struct {
	mu      sync.Mutex
	outputs []conversation.Output
}

func (c *capture) Present(_ context.Context, out conversation.Output) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.outputs = append(c.outputs, out)
	return nil
}

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		Catalog: config.CatalogConfig{
			BaseURL:    baseURL,
			MaxResults: 5,
			Timeout:    time.Second,
			MaxRetries: 0,
			LookupTTL:  time.Minute,
		},
	}
}

func TestNewCore_SearchThroughCatalogChain(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/volumes", r.URL.Path)
		assert.Equal(t, "intitle:Dune", r.URL.Query().Get("q"))
		assert.Equal(t, "5", r.URL.Query().Get("maxResults"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"totalItems": 1,
			"items": []map[string]any{{
				"id":         "dune1",
				"volumeInfo": map[string]any{"title": "Dune", "authors": []string{"Frank Herbert"}},
			}},
		})
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	core, err := NewCore(cfg, zap.NewNop())
	require.NoError(t, err)
	out := &capture{}
	svc := core.Service(cfg, out, zap.NewNop())

	ctx := context.Background()
	require.NoError(t, svc.Handle(ctx, conversation.Event{UserID: 1, Text: conversation.MenuSearchTitle}))
	require.NoError(t, svc.Handle(ctx, conversation.Event{UserID: 1, Text: "Dune"}))

	entries := core.History.List(1)
	require.Len(t, entries, 1)
	assert.Equal(t, "dune1", entries[0].Books[0].ID)
	assert.Equal(t, session.MainMenu, core.Sessions.GetState(1))
	assert.NoError(t, core.Breaker.Ready(ctx))

	b, err := core.Gateway.GetByID(ctx, "dune1")
	require.NoError(t, err)
	assert.Equal(t, "Frank Herbert", b.Authors)
}

func TestNewCore_GenresFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genres.yaml")
	require.NoError(t, os.WriteFile(path, []byte("genres:\n  - label: Poetry\n    subject: poetry\n"), 0o600))

	cfg := testConfig("http://127.0.0.1:0")
	cfg.App.GenresFile = path
	core, err := NewCore(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, []string{"Poetry"}, core.Genres.Labels())

	cfg.App.GenresFile = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = NewCore(cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestNewCore_GenresFileWithCommandLabel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genres.yaml")
	doc := "genres:\n  - label: Poetry\n    subject: poetry\n  - label: \"⬅️ Back\"\n    subject: back\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	cfg := testConfig("http://127.0.0.1:0")
	cfg.App.GenresFile = path
	_, err := NewCore(cfg, zap.NewNop())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "reserved")
}
