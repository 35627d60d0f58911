package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.log")
	l := New(path, true)

	l.Info("event handled", zap.String("user_id", "42"))
	l.Debug("dropped below info")
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "event handled", entry["message"])
	assert.Equal(t, "42", entry["user_id"])
	assert.Contains(t, entry, "timestamp")
}

func TestNewFileOnly_EmptyPathIsNop(t *testing.T) {
	l := NewFileOnly("")
	assert.NotPanics(t, func() { l.Info("nothing") })
}
