package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"codeberg.org/snonux/cardfactory/internal/card"
)

var (
	// ErrKeyNotFound is returned by KV.Get for a missing key
	ErrKeyNotFound = errors.New("key not found")
	// ErrWriteFailure is matched by WriteError
	ErrWriteFailure = errors.New("persistence write failure")
	// ErrUnknownBackend is returned by Open for an unsupported backend name
	ErrUnknownBackend = errors.New("unknown storage backend")
	// ErrCorruptData is matched by DecodeError
	ErrCorruptData = errors.New("corrupt stored data")
	// ErrDuplicateID is returned when stored cards share an ID
	ErrDuplicateID = errors.New("duplicate card id")
	// ErrMissingID is returned for a stored card without an ID
	ErrMissingID = errors.New("card id must not be empty")
)

// KV is the key-value port the repositories are built on
type KV interface {
	// Get returns the value stored under key or ErrKeyNotFound
	Get(ctx context.Context, key string) ([]byte, error)
	// Put stores value under key, replacing any previous value
	Put(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases the underlying resources
	Close() error
}

// WriteError reports a rejected write, for example a full disk or a
// read-only database
type WriteError struct {
	Key string
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write %q: %v", e.Key, e.Err)
}

// Unwrap returns the underlying error
func (e *WriteError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrWriteFailure) match
func (e *WriteError) Is(target error) bool {
	return target == ErrWriteFailure
}

// DecodeError reports stored cards that can not be used, for example an
// unknown category or a missing definition
type DecodeError struct {
	Key   string
	Index int // position of the offending card
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid card %d under %q: %v", e.Index, e.Key, e.Err)
}

// Unwrap returns the underlying error
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrCorruptData) match
func (e *DecodeError) Is(target error) bool {
	return target == ErrCorruptData
}

// checkCards validates cards read back from key
func checkCards(key string, cards []card.Card) error {
	seen := make(map[string]bool, len(cards))
	for i, c := range cards {
		if err := c.Validate(); err != nil {
			return &DecodeError{Key: key, Index: i, Err: err}
		}
		if c.ID == "" {
			return &DecodeError{Key: key, Index: i, Err: ErrMissingID}
		}
		if seen[c.ID] {
			return &DecodeError{Key: key, Index: i, Err: fmt.Errorf("%w: %q", ErrDuplicateID, c.ID)}
		}
		seen[c.ID] = true
	}
	return nil
}

// Backend names accepted by Open
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendMemory = "memory"
)

// Config selects and configures a backend
type Config struct {
	Backend string // sqlite (default), file or memory
	Path    string // database file for sqlite, directory for file
	Breaker bool   // guard the backend with a circuit breaker
}

// DefaultConfig returns the SQLite backend under the XDG state directory
func DefaultConfig() Config {
	return Config{
		Backend: BackendSQLite,
		Path:    filepath.Join(DefaultStateDir(), "cardfactory.db"),
		Breaker: true,
	}
}

// DefaultStateDir returns ~/.local/state/cardfactory
func DefaultStateDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state", "cardfactory")
}

// Open creates the KV selected by cfg
func Open(cfg Config, logger *slog.Logger) (KV, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var (
		kv  KV
		err error
	)

	switch cfg.Backend {
	case "", BackendSQLite:
		kv, err = OpenSQLite(cfg.Path)
	case BackendFile:
		kv, err = NewFileKV(cfg.Path)
	case BackendMemory:
		kv = NewMemoryKV()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
	if err != nil {
		return nil, err
	}

	logger.Debug("storage opened", "backend", cfg.Backend, "path", cfg.Path)

	if cfg.Breaker {
		kv = WithBreaker(kv, DefaultBreakerSettings(), logger)
	}
	return kv, nil
}
