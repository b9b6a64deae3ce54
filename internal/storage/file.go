package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"food_store/internal/models"
	"food_store/internal/pkg/logger"
	"food_store/internal/pkg/security"
)

const sessionFileMode = 0o600

// File keeps the session as JSON in a local file, optionally sealed.
type File struct {
	path   string
	sealer *security.Sealer
	log    *logger.Logger
	mu     sync.Mutex
}

// NewFile returns a file store at path. A nil sealer stores plain JSON.
func NewFile(path string, sealer *security.Sealer, l *logger.Logger) *File {
	return &File{path: path, sealer: sealer, log: l}
}

// Load reads the session file. A missing file is an empty session.
func (f *File) Load(_ context.Context) (models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var session models.Session

	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return session, nil
	}
	if err != nil {
		f.log.Sugar().Errorf("Failed to read session file %s: %s", f.path, err)
		return session, err
	}

	if f.sealer != nil {
		data, err = f.sealer.Open(data)
		if err != nil {
			f.log.Sugar().Errorf("Failed to open sealed session file %s: %s", f.path, err)
			return session, err
		}
	}

	if err := json.Unmarshal(data, &session); err != nil {
		return models.Session{}, fmt.Errorf("storage: decode session file: %w", err)
	}
	return session, nil
}

// Save writes the session atomically with owner-only permissions.
func (f *File) Save(_ context.Context, session models.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("storage: encode session: %w", err)
	}
	if f.sealer != nil {
		data, err = f.sealer.Seal(data)
		if err != nil {
			return err
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".session-*")
	if err != nil {
		f.log.Sugar().Errorf("Failed to create temporary session file: %s", err)
		return err
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(sessionFileMode); err != nil {
		tmp.Close()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		f.log.Sugar().Errorf("Failed to replace session file %s: %s", f.path, err)
		return err
	}
	return nil
}

// Clear deletes the session file.
func (f *File) Clear(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Close is a no-op.
func (f *File) Close() {}
