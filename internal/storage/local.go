package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
)

// LocalStorage writes blobs into a directory on disk.
type LocalStorage struct {
	dir string
}

func NewLocal(dir string) (*LocalStorage, error) {
	if dir == "" {
		dir = "uploads"
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStorage{dir: dir}, nil
}

func (l *LocalStorage) Name() string { return "local" }

func (l *LocalStorage) path(name string) (string, error) {
	key, err := objectKey("", name)
	if err != nil {
		return "", err
	}
	return filepath.Join(l.dir, key), nil
}

func (l *LocalStorage) Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) error {
	p, err := l.path(name)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(p)
		return err
	}
	return f.Close()
}

func (l *LocalStorage) Get(ctx context.Context, name string) (io.ReadCloser, *ObjectInfo, error) {
	p, err := l.path(name)
	if err != nil {
		return nil, nil, err
	}

	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, ErrObjectNotFound
		}
		return nil, nil, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return f, &ObjectInfo{Size: st.Size(), ContentType: mime.TypeByExtension(filepath.Ext(p))}, nil
}

func (l *LocalStorage) Delete(ctx context.Context, name string) error {
	p, err := l.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
