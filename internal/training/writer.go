package training

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/mitchelldurbincs/PawnCaptureRL/internal/game/core"
)

// Writer exports training statistics as CSV
type Writer struct {
	path string
}

// NewWriter creates a writer for path, creating its directory if needed
func NewWriter(path string) (*Writer, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}
	return &Writer{path: path}, nil
}

// Path returns the output file
func (w *Writer) Path() string { return w.path }

// WriteEpochs writes one row per epoch
func (w *Writer) WriteEpochs(epochs []EpochStats) error {
	f, err := os.Create(w.path)
	if err != nil {
		return fmt.Errorf("failed to create epoch stats file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)

	header := []string{
		"epoch", "games", "white_wins", "black_wins", "draws",
		"white_win_rate", "avg_half_moves", "white_captures", "black_captures", "persist_errors",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write epoch stats header: %w", err)
	}

	for _, e := range epochs {
		row := []string{
			strconv.Itoa(e.Epoch),
			strconv.Itoa(e.Games),
			strconv.Itoa(e.WhiteWins),
			strconv.Itoa(e.BlackWins),
			strconv.Itoa(e.Draws),
			strconv.FormatFloat(e.WinRate(core.White), 'f', 4, 64),
			strconv.FormatFloat(e.AvgHalfMoves(), 'f', 2, 64),
			strconv.Itoa(e.WhiteCaptures),
			strconv.Itoa(e.BlackCaptures),
			strconv.Itoa(e.PersistErrors),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write epoch stats row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush epoch stats: %w", err)
	}
	return nil
}
