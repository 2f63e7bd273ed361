package score

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"attimuite/internal/domain"
)

// FileStore persists the score as a small YAML document.
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by path. The file is created on first Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) Load(ctx context.Context) (domain.Score, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.Score{}, ErrNotFound
	}
	if err != nil {
		return domain.Score{}, fmt.Errorf("failed to read score file: %w", err)
	}

	var s domain.Score
	if err := yaml.Unmarshal(data, &s); err != nil {
		return domain.Score{}, fmt.Errorf("failed to decode score file %s: %w", f.path, err)
	}
	return s.Normalize(), nil
}

// Save writes a uniquely named, synced temp file next to the target and renames
// it into place. Concurrent writers never share a temp file, and readers see
// either the old score or the new one.
func (f *FileStore) Save(ctx context.Context, s domain.Score) error {
	data, err := yaml.Marshal(s.Normalize())
	if err != nil {
		return fmt.Errorf("failed to encode score: %w", err)
	}
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create score dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp score file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write score file: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set score file mode: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync score file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close score file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("failed to replace score file: %w", err)
	}
	return nil
}
