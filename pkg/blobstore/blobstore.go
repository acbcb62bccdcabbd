// Package blobstore reads and writes uploaded objects addressed by bucket and path.
package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

var (
	ErrNotFound    = errors.New("object not found")
	ErrInvalidPath = errors.New("invalid object path")
)

type Store interface {
	Download(ctx context.Context, bucket, objectPath string) ([]byte, error)
	Upload(ctx context.Context, bucket, objectPath string, data []byte) error
}

// FS keeps every bucket as a directory below root.
type FS struct {
	root string
}

func NewFS(root string) (*FS, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("blob root is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create blob root: %w", err)
	}
	return &FS{root: root}, nil
}

func (s *FS) Download(ctx context.Context, bucket, objectPath string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := s.resolve(bucket, objectPath)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, bucket, objectPath)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s/%s: %w", bucket, objectPath, err)
	}
	return data, nil
}

func (s *FS) Upload(ctx context.Context, bucket, objectPath string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := s.resolve(bucket, objectPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(p), err)
	}
	tmp := p + ".part"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s/%s: %w", bucket, objectPath, err)
	}
	return os.Rename(tmp, p)
}

// resolve maps bucket and object path below root, refusing anything that escapes it.
func (s *FS) resolve(bucket, objectPath string) (string, error) {
	if bucket == "" || strings.ContainsAny(bucket, `/\`) || bucket == "." || bucket == ".." {
		return "", fmt.Errorf("%w: bucket %q", ErrInvalidPath, bucket)
	}
	clean := path.Clean("/" + objectPath)
	if objectPath == "" || clean == "/" || strings.Contains(objectPath, `\`) || clean != "/"+strings.TrimPrefix(objectPath, "/") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, objectPath)
	}
	return filepath.Join(s.root, bucket, filepath.FromSlash(clean)), nil
}
