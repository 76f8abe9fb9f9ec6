package qtable

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/PawnCaptureRL/internal/game/core"
)

func TestFilePersistence_MissingFileIsEmpty(t *testing.T) {
	fp := NewFilePersistence(filepath.Join(t.TempDir(), "absent.json"), zerolog.New(zerolog.NewTestWriter(t)))

	table, err := fp.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, table.StateCount(core.White))
	assert.Equal(t, 0, table.StateCount(core.Black))
}

func TestFilePersistence_SaveLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "q_table.json")
	fp := NewFilePersistence(path, zerolog.New(zerolog.NewTestWriter(t)))
	ctx := context.Background()

	table := NewTable()
	table.White["W|a1:W,b3:B"] = ActionValues{"a1a2": 21, "a1b2": 19.5}
	table.Black["B|a2:W,b3:B"] = ActionValues{"b3a2": -3}

	require.NoError(t, fp.Save(ctx, table))

	loaded, err := fp.Load(ctx)
	require.NoError(t, err)
	assert.True(t, table.Equal(loaded))

	stats := fp.Stats()
	assert.Equal(t, int64(1), stats.Saves)
	assert.Equal(t, int64(1), stats.Loads)
	assert.Positive(t, stats.BytesWritten)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not be left behind")
	assert.Equal(t, "q_table.json", entries[0].Name())
}

func TestFilePersistence_OnDiskLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "q_table.json")
	fp := NewFilePersistence(path, zerolog.Nop())

	table := NewTable()
	table.White["W|a1:W"] = ActionValues{"a1a2": 20}
	require.NoError(t, fp.Save(context.Background(), table))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var raw map[string]map[string]map[string]float64
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, map[string]map[string]map[string]float64{
		"W": {"W|a1:W": {"a1a2": 20}},
		"B": {},
	}, raw)
}

func TestFilePersistence_LoadsPartialDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "q_table.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"W":{"W|a1:W":{"a1a2":7}}}`), 0o644))

	table, err := NewFilePersistence(path, zerolog.Nop()).Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, table.Black)
	assert.Equal(t, 7.0, table.White["W|a1:W"]["a1a2"])
}

func TestFilePersistence_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "q_table.json")
	garbage := []byte("{not json")
	require.NoError(t, os.WriteFile(path, garbage, 0o644))

	_, err := NewFilePersistence(path, zerolog.Nop()).Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCorruptTable)

	moved, err := filepath.Glob(path + ".corrupt-*")
	require.NoError(t, err)
	require.Len(t, moved, 1)
	kept, err := os.ReadFile(moved[0])
	require.NoError(t, err)
	assert.Equal(t, garbage, kept)
	assert.NoFileExists(t, path)
}

func TestFilePersistence_CorruptFileSurvivesFlush(t *testing.T) {
	path := filepath.Join(t.TempDir(), "q_table.json")
	garbage := []byte(`{"white": [1, 2`)
	require.NoError(t, os.WriteFile(path, garbage, 0o644))

	layer := NewFilePersistence(path, zerolog.Nop())
	s := Open(context.Background(), DefaultConfig(), layer, zerolog.Nop())
	assert.Equal(t, 0, s.StateCount(core.White), "unreadable table degrades to empty")

	s.EnsureState(core.White, StateKey("w:a1"), []ActionKey{"a1a2"})
	require.NoError(t, s.Flush(context.Background()))
	assert.FileExists(t, path)

	moved, err := filepath.Glob(path + ".corrupt-*")
	require.NoError(t, err)
	require.Len(t, moved, 1)
	kept, err := os.ReadFile(moved[0])
	require.NoError(t, err)
	assert.Equal(t, garbage, kept, "the flush must not touch the quarantined copy")
}

func TestFilePersistence_CanceledContext(t *testing.T) {
	fp := NewFilePersistence(filepath.Join(t.TempDir(), "q.json"), zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, fp.Save(ctx, NewTable()), context.Canceled)
	_, err := fp.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewPersistenceLayer(t *testing.T) {
	tests := []struct {
		name    string
		config  PersistenceConfig
		want    any
		wantErr bool
	}{
		{name: "none", config: PersistenceConfig{Type: PersistenceTypeNone}, want: &NullPersistence{}},
		{name: "file", config: PersistenceConfig{Type: PersistenceTypeFile, Path: "q.json"}, want: &FilePersistence{}},
		{name: "file without path", config: PersistenceConfig{Type: PersistenceTypeFile}, wantErr: true},
		{name: "unknown", config: PersistenceConfig{Type: "redis"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			layer, err := NewPersistenceLayer(tt.config, zerolog.Nop())
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPersistenceType)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, layer)
		})
	}
}
