package mirror

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned by Load when no mirror record exists.
var ErrNotFound = errors.New("no mirrored credential")

// ErrStale is returned by Load when the record is older than the freshness
// bound.
var ErrStale = errors.New("mirrored credential stale")

// Config controls mirror placement and freshness.
type Config struct {
	Path   string
	MaxAge time.Duration
}

// Store reads and writes the single-credential mirror file.
type Store struct {
	fs     afero.Fs
	path   string
	maxAge time.Duration
	nowFn  func() time.Time
}

type record struct {
	AccessToken string    `yaml:"access_token"`
	SavedAt     time.Time `yaml:"saved_at"`
}

// New creates a mirror store on the given filesystem.
func New(fs afero.Fs, cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, errors.New("mirror path required")
	}
	if cfg.MaxAge <= 0 {
		return nil, errors.New("mirror max age must be positive")
	}
	return &Store{
		fs:     fs,
		path:   cfg.Path,
		maxAge: cfg.MaxAge,
		nowFn:  time.Now,
	}, nil
}

// Save writes the credential with the current timestamp. The parent
// directory is created as needed; the file is owner-readable only.
func (s *Store) Save(token string) error {
	if s == nil {
		return nil
	}
	if token == "" {
		return s.Clear()
	}

	data, err := yaml.Marshal(record{
		AccessToken: token,
		SavedAt:     s.nowFn().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode mirror record: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := s.fs.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create mirror directory: %w", err)
		}
	}
	if err := afero.WriteFile(s.fs, s.path, data, 0o600); err != nil {
		return fmt.Errorf("write mirror file: %w", err)
	}
	return nil
}

// Load returns the mirrored credential when present and fresh.
func (s *Store) Load() (string, error) {
	if s == nil {
		return "", ErrNotFound
	}

	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		return "", ErrNotFound
	}

	var rec record
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return "", fmt.Errorf("decode mirror record: %w", err)
	}
	if rec.AccessToken == "" {
		return "", ErrNotFound
	}
	if s.nowFn().Sub(rec.SavedAt) > s.maxAge {
		return "", ErrStale
	}
	return rec.AccessToken, nil
}

// Clear removes the mirror file. A missing file is not an error.
func (s *Store) Clear() error {
	if s == nil {
		return nil
	}
	if err := s.fs.Remove(s.path); err != nil {
		if exists, statErr := afero.Exists(s.fs, s.path); statErr == nil && !exists {
			return nil
		}
		return fmt.Errorf("remove mirror file: %w", err)
	}
	return nil
}
