package storage

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/keshon/filament/internal/datastore"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStorage(t *testing.T) *Storage {
	t.Helper()
	ds, err := datastore.NewWithConfig(datastore.Config{
		FilePath: filepath.Join(t.TempDir(), "datastore.json"),
		Logger:   zerolog.Nop(),
	})
	require.NoError(t, err)
	s := NewWithStore(ds)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCommandHistoryIsBounded(t *testing.T) {
	s := newStorage(t)

	empty, err := s.FetchCommandHistory("g1")
	require.NoError(t, err)
	assert.Empty(t, empty)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range CommandHistoryLimit + 5 {
		require.NoError(t, s.AppendCommandToHistory("g1", CommandHistoryRecord{
			Command:  fmt.Sprintf("cmd%d", i),
			Datetime: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, s.AppendCommandToHistory("g2", CommandHistoryRecord{Command: "other"}))

	history, err := s.FetchCommandHistory("g1")
	require.NoError(t, err)
	require.Len(t, history, CommandHistoryLimit)
	assert.Equal(t, "cmd5", history[0].Command)
	assert.Equal(t, fmt.Sprintf("cmd%d", CommandHistoryLimit+4), history[len(history)-1].Command)
	assert.True(t, history[0].Datetime.Equal(base.Add(5*time.Minute)))

	other, err := s.FetchCommandHistory("g2")
	require.NoError(t, err)
	assert.Len(t, other, 1)
}

func TestCommandHashes(t *testing.T) {
	s := newStorage(t)

	hashes, err := s.CommandHashes(GlobalScope)
	require.NoError(t, err)
	assert.NotNil(t, hashes)
	assert.Empty(t, hashes)

	require.NoError(t, s.SetCommandHashes("g1", map[string]string{"ping": "abc"}))
	hashes, err = s.CommandHashes("g1")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"ping": "abc"}, hashes)

	s.ClearCommandHashes("g1")
	hashes, err = s.CommandHashes("g1")
	require.NoError(t, err)
	assert.Empty(t, hashes)
}
