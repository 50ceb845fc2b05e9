package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

const credentialsFileName = "credentials.json"

// FileRepo keeps every slot in one JSON object on disk, readable only by the owner.
type FileRepo struct {
	mu   sync.Mutex
	path string
}

var _ Repo = (*FileRepo)(nil)

// NewFileRepo creates the folder if needed. The file itself is created on first Set.
func NewFileRepo(folder string) (*FileRepo, error) {
	if folder == "" {
		return nil, fmt.Errorf("folder is required")
	}
	if err := os.MkdirAll(folder, 0o700); err != nil {
		return nil, fmt.Errorf("[credentials NewFileRepo] create folder: %w", err)
	}
	return &FileRepo{path: filepath.Join(folder, credentialsFileName)}, nil
}

func (r *FileRepo) Path() string {
	return r.path
}

func (r *FileRepo) Get(_ context.Context, key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("key is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	slots, err := r.load()
	if err != nil {
		return "", err
	}
	value, ok := slots[key]
	if !ok || value == "" {
		return "", ErrNotFound
	}
	return value, nil
}

func (r *FileRepo) Set(_ context.Context, key, value string) error {
	if key == "" {
		return fmt.Errorf("key is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	slots, err := r.load()
	if err != nil {
		return err
	}
	slots[key] = value
	return r.save(slots)
}

func (r *FileRepo) Delete(_ context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("key is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	slots, err := r.load()
	if err != nil {
		return err
	}
	if _, ok := slots[key]; !ok {
		return nil
	}
	delete(slots, key)
	return r.save(slots)
}

func (r *FileRepo) load() (map[string]string, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", r.path, err)
	}
	slots := map[string]string{}
	if len(data) == 0 {
		return slots, nil
	}
	if err := json.Unmarshal(data, &slots); err != nil {
		return nil, fmt.Errorf("decode %s: %w", r.path, err)
	}
	return slots, nil
}

// save writes to a temp file and renames it over the old one so a crash never leaves half a file.
func (r *FileRepo) save(slots map[string]string) error {
	data, err := json.Marshal(slots)
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(r.path), credentialsFileName+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("replace %s: %w", r.path, err)
	}
	return nil
}
