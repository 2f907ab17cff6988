package persist

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
)

// DefaultSlot is the slot used when none is configured.
const DefaultSlot = "document-content"

var (
	// ErrSlotNotFound is returned by Get and Delete for a slot never written.
	ErrSlotNotFound = errors.New("slot not found")
	// ErrInvalidSlot is returned for slot names that are not a single
	// path-safe token.
	ErrInvalidSlot = errors.New("invalid slot name")
	// ErrSlotTooLarge is returned by Adapter.Save when the encoded document
	// exceeds MaxSlotSize.
	ErrSlotTooLarge = errors.New("slot content too large")
)

// Store holds serialized documents in named slots.
type Store interface {
	Get(ctx context.Context, slot string) (string, error)
	Put(ctx context.Context, slot, content string) error
	Delete(ctx context.Context, slot string) error
}

var slotPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,127}$`)

// ValidateSlot checks that slot can be used as a key and a file name.
func ValidateSlot(slot string) error {
	if !slotPattern.MatchString(slot) {
		return fmt.Errorf("%w: %q", ErrInvalidSlot, slot)
	}
	return nil
}

// MemoryStore keeps slots in a map. It is safe for concurrent use.
type MemoryStore struct {
	mu    sync.RWMutex
	slots map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{slots: make(map[string]string)}
}

func (m *MemoryStore) Get(_ context.Context, slot string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	content, ok := m.slots[slot]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrSlotNotFound, slot)
	}
	return content, nil
}

func (m *MemoryStore) Put(_ context.Context, slot, content string) error {
	if err := ValidateSlot(slot); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[slot] = content
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, slot string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.slots[slot]; !ok {
		return fmt.Errorf("%w: %s", ErrSlotNotFound, slot)
	}
	delete(m.slots, slot)
	return nil
}

// FileStore keeps each slot in its own file under Dir.
type FileStore struct {
	Dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{Dir: dir}
}

func (f *FileStore) path(slot string) (string, error) {
	if err := ValidateSlot(slot); err != nil {
		return "", err
	}
	return filepath.Join(f.Dir, slot), nil
}

func (f *FileStore) Get(ctx context.Context, slot string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path, err := f.path(slot)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrSlotNotFound, slot)
		}
		return "", fmt.Errorf("failed to read slot file '%s': %w", path, err)
	}
	return string(data), nil
}

// Put writes content to a temporary file and renames it over the slot
// file, so a failed write never leaves a truncated slot behind.
func (f *FileStore) Put(ctx context.Context, slot, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := f.path(slot)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(f.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create store dir '%s': %w", f.Dir, err)
	}
	tmp, err := os.CreateTemp(f.Dir, "."+slot+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write slot file '%s': %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write slot file '%s': %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace slot file '%s': %w", path, err)
	}
	return nil
}

func (f *FileStore) Delete(ctx context.Context, slot string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := f.path(slot)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrSlotNotFound, slot)
		}
		return fmt.Errorf("failed to remove slot file '%s': %w", path, err)
	}
	return nil
}
