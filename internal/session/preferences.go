package session

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/joho/godotenv"
)

// Preferences is the local key-value store a client keeps between runs.
type Preferences interface {
	Get(key string) (string, bool, error)
	Set(key string, value string) error
	Delete(key string) error
}

// FilePreferences keeps preferences in a dotenv formatted file.
type FilePreferences struct {
	mu   sync.Mutex
	path string
}

func NewFilePreferences(path string) *FilePreferences {
	return &FilePreferences{path: path}
}

func (p *FilePreferences) Get(key string) (string, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	values, err := p.read()
	if err != nil {
		return "", false, err
	}
	value, ok := values[key]
	return value, ok, nil
}

func (p *FilePreferences) Set(key string, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	values, err := p.read()
	if err != nil {
		return err
	}
	values[key] = value
	return p.write(values)
}

func (p *FilePreferences) Delete(key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	values, err := p.read()
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	return p.write(values)
}

func (p *FilePreferences) read() (map[string]string, error) {
	values, err := godotenv.Read(p.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to read preferences file %s: %w", p.path, err)
	}
	return values, nil
}

func (p *FilePreferences) write(values map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(p.path), 0o700); err != nil {
		return fmt.Errorf("failed to create preferences directory: %w", err)
	}
	if err := godotenv.Write(values, p.path); err != nil {
		return fmt.Errorf("failed to write preferences file %s: %w", p.path, err)
	}
	return nil
}
