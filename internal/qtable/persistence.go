package qtable

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/PawnCaptureRL/internal/game/core"
)

var (
	// ErrInvalidPersistenceType is returned when an unknown persistence type is specified
	ErrInvalidPersistenceType = errors.New("invalid persistence type")
	// ErrPersist wraps failures to write the table to durable storage
	ErrPersist = errors.New("failed to persist value table")
	// ErrCorruptTable is returned by Load when the stored file does not decode. The file has
	// already been moved aside, so the next save cannot overwrite it.
	ErrCorruptTable = errors.New("corrupt value table")
)

// quarantineLayout is appended to the table path when an undecodable file is moved aside
const quarantineLayout = "20060102T150405.000000000Z"

// PersistenceType represents the type of persistence backend
type PersistenceType string

const (
	// PersistenceTypeNone keeps the table in memory only
	PersistenceTypeNone PersistenceType = "none"
	// PersistenceTypeFile stores the table as a single JSON file
	PersistenceTypeFile PersistenceType = "file"
)

// PersistenceConfig contains configuration for the persistence layer
type PersistenceConfig struct {
	Type PersistenceType
	Path string
}

// DefaultPersistenceConfig returns a file-backed configuration writing q_table.json
func DefaultPersistenceConfig() PersistenceConfig {
	return PersistenceConfig{
		Type: PersistenceTypeFile,
		Path: "q_table.json",
	}
}

// PersistenceLayer loads and saves whole tables
type PersistenceLayer interface {
	// Load returns the stored table, or an empty one if nothing has been stored yet
	Load(ctx context.Context) (*Table, error)

	// Save replaces the stored table. A failed save leaves the previous copy intact.
	Save(ctx context.Context, t *Table) error

	// Stats returns persistence statistics
	Stats() PersistenceStats
}

// PersistenceStats contains statistics about persistence operations
type PersistenceStats struct {
	Loads        int64
	Saves        int64
	SaveErrors   int64
	BytesWritten int64
	LastSaveTime time.Time
}

// FilePersistence keeps the table in one JSON file
type FilePersistence struct {
	path   string
	logger zerolog.Logger

	mu    sync.Mutex
	stats PersistenceStats
}

// NewFilePersistence creates a file-backed persistence layer
func NewFilePersistence(path string, logger zerolog.Logger) *FilePersistence {
	return &FilePersistence{
		path:   path,
		logger: logger.With().Str("component", "file_persistence").Str("path", path).Logger(),
	}
}

// Path returns the file the table is stored in
func (fp *FilePersistence) Path() string { return fp.path }

// Load reads the table. A missing file is not an error.
func (fp *FilePersistence) Load(ctx context.Context) (*Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(fp.path)
	if errors.Is(err, fs.ErrNotExist) {
		fp.logger.Info().Msg("No stored value table, starting empty")
		return NewTable(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read value table: %w", err)
	}

	t := NewTable()
	if err := json.Unmarshal(data, t); err != nil {
		moved, qerr := fp.quarantine()
		if qerr != nil {
			return nil, fmt.Errorf("failed to decode value table: %w (moving it aside failed: %v)", err, qerr)
		}
		fp.logger.Error().Err(err).Str("moved_to", moved).Msg("Stored value table is unreadable, moved aside")
		return nil, fmt.Errorf("%w: %s moved to %s: %v", ErrCorruptTable, fp.path, moved, err)
	}
	t.normalize()

	fp.mu.Lock()
	fp.stats.Loads++
	fp.mu.Unlock()

	fp.logger.Info().
		Int("white_states", t.StateCount(core.White)).
		Int("black_states", t.StateCount(core.Black)).
		Msg("Loaded value table")
	return t, nil
}

// Save writes to a temp file in the same directory and renames it over the target,
// so readers only ever see a complete snapshot.
func (fp *FilePersistence) Save(ctx context.Context, t *Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(t)
	if err != nil {
		fp.recordError()
		return fmt.Errorf("failed to encode value table: %w", err)
	}

	dir := filepath.Dir(fp.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		fp.recordError()
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(fp.path)+".tmp-*")
	if err != nil {
		fp.recordError()
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if err := writeAndSync(tmp, data); err != nil {
		os.Remove(tmpName)
		fp.recordError()
		return err
	}
	if err := os.Rename(tmpName, fp.path); err != nil {
		os.Remove(tmpName)
		fp.recordError()
		return fmt.Errorf("failed to replace value table: %w", err)
	}

	fp.mu.Lock()
	fp.stats.Saves++
	fp.stats.BytesWritten += int64(len(data))
	fp.stats.LastSaveTime = time.Now()
	fp.mu.Unlock()

	fp.logger.Debug().Int("bytes", len(data)).Msg("Saved value table")
	return nil
}

// quarantine renames the table file to <path>.corrupt-<utc timestamp> and returns the new name
func (fp *FilePersistence) quarantine() (string, error) {
	moved := fp.path + ".corrupt-" + time.Now().UTC().Format(quarantineLayout)
	if err := os.Rename(fp.path, moved); err != nil {
		return "", err
	}
	return moved, nil
}

func writeAndSync(f *os.File, data []byte) error {
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("failed to write value table: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("failed to sync value table: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close value table: %w", err)
	}
	return nil
}

func (fp *FilePersistence) recordError() {
	fp.mu.Lock()
	fp.stats.SaveErrors++
	fp.mu.Unlock()
}

// Stats returns persistence statistics
func (fp *FilePersistence) Stats() PersistenceStats {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	return fp.stats
}

// NullPersistence is a no-op persistence layer
type NullPersistence struct{}

func (n *NullPersistence) Load(ctx context.Context) (*Table, error) {
	return NewTable(), nil
}

func (n *NullPersistence) Save(ctx context.Context, t *Table) error {
	return nil
}

func (n *NullPersistence) Stats() PersistenceStats {
	return PersistenceStats{}
}

// NewPersistenceLayer creates a persistence layer based on configuration
func NewPersistenceLayer(config PersistenceConfig, logger zerolog.Logger) (PersistenceLayer, error) {
	switch config.Type {
	case PersistenceTypeNone:
		return &NullPersistence{}, nil
	case PersistenceTypeFile:
		if config.Path == "" {
			return nil, fmt.Errorf("%w: file persistence needs a path", ErrInvalidPersistenceType)
		}
		return NewFilePersistence(config.Path, logger), nil
	default:
		return nil, ErrInvalidPersistenceType
	}
}
