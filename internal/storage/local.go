package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Local stores payloads on disk under a media root directory and serves
// them back under /media/ in development mode.
type Local struct {
	root string
}

func NewLocal(root string) (*Local, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media root: %w", err)
	}
	return &Local{root: root}, nil
}

// Root returns the media root directory, for static file serving.
func (l *Local) Root() string {
	return l.root
}

func (l *Local) Save(ctx context.Context, key string, r io.Reader, contentType string) error {
	p := l.path(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}
	f, err := os.Create(p)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

func (l *Local) Size(ctx context.Context, key string) (int64, error) {
	info, err := os.Stat(l.path(key))
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func (l *Local) Delete(ctx context.Context, key string) error {
	err := os.Remove(l.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (l *Local) URL(key string) string {
	return cleanURL("/media/" + key)
}

func (l *Local) path(key string) string {
	return filepath.Join(l.root, filepath.FromSlash(key))
}
