package training

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter_WriteEpochs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs", "epochs.csv")
	w, err := NewWriter(path)
	require.NoError(t, err)
	assert.Equal(t, path, w.Path())

	epochs := []EpochStats{
		{Epoch: 1, Games: 4, WhiteWins: 3, BlackWins: 1, TotalHalfMoves: 22, WhiteCaptures: 2},
		{Epoch: 2, Games: 4, WhiteWins: 1, BlackWins: 2, Draws: 1, TotalHalfMoves: 30, BlackCaptures: 5, PersistErrors: 1},
	}
	require.NoError(t, w.WriteEpochs(epochs))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{
		"epoch", "games", "white_wins", "black_wins", "draws",
		"white_win_rate", "avg_half_moves", "white_captures", "black_captures", "persist_errors",
	}, rows[0])
	assert.Equal(t, []string{"1", "4", "3", "1", "0", "0.7500", "5.50", "2", "0", "0"}, rows[1])
	assert.Equal(t, []string{"2", "4", "1", "2", "1", "0.2500", "7.50", "0", "5", "1"}, rows[2])
}

func TestWriter_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "epochs.csv")
	w, err := NewWriter(path)
	require.NoError(t, err)

	require.NoError(t, w.WriteEpochs([]EpochStats{{Epoch: 1, Games: 1}, {Epoch: 2, Games: 1}}))
	require.NoError(t, w.WriteEpochs(nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
