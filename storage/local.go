package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

type writeFile interface {
	io.Writer
	io.Closer
}

var createFile = func(name string) (writeFile, error) {
	f, err := os.Create(name)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Local writes documents under a directory served at /uploads/
type Local struct {
	Dir     string
	BaseURL string
}

// NewLocal creates the upload directory if needed
func NewLocal(dir, baseURL string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &Local{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Put copies r to Dir/key
func (l *Local) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (Object, error) {
	if err := ctx.Err(); err != nil {
		return Object{}, err
	}
	dst := filepath.Join(l.Dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return Object{}, fmt.Errorf("failed to create directory: %w", err)
	}
	f, err := createFile(dst)
	if err != nil {
		return Object{}, fmt.Errorf("failed to create file: %w", err)
	}

	n, err := io.Copy(f, r)
	if err != nil {
		f.Close()
		os.Remove(dst)
		return Object{}, fmt.Errorf("failed to write file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(dst)
		return Object{}, fmt.Errorf("failed to flush file: %w", err)
	}
	return Object{
		Key:         key,
		URL:         l.BaseURL + "/uploads/" + key,
		Size:        n,
		ContentType: contentType,
	}, nil
}
