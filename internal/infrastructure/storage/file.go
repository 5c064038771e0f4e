package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nappylocks/client-sdk/internal/core/domain"
)

// File persists each slot as a JSON file inside a state directory. Writes go
// through a temp file and rename so a crash mid-write never leaves a torn
// slot behind.
type File struct {
	dir string
}

// NewFile creates the state directory if needed and returns the store.
func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	return &File{dir: dir}, nil
}

func (f *File) Save(_ context.Context, slot string, data []byte) error {
	target := f.path(slot)
	tmp, err := os.CreateTemp(f.dir, slot+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp slot: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write slot %s: %w", slot, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close slot %s: %w", slot, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("commit slot %s: %w", slot, err)
	}
	return nil
}

func (f *File) Load(_ context.Context, slot string) ([]byte, error) {
	data, err := os.ReadFile(f.path(slot))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrSlotEmpty
		}
		return nil, fmt.Errorf("read slot %s: %w", slot, err)
	}
	if len(data) == 0 {
		return nil, domain.ErrSlotEmpty
	}
	return data, nil
}

func (f *File) Delete(_ context.Context, slot string) error {
	if err := os.Remove(f.path(slot)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete slot %s: %w", slot, err)
	}
	return nil
}

func (f *File) path(slot string) string {
	return filepath.Join(f.dir, slot+".json")
}
