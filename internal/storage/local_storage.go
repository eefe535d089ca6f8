package storage

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
)

// LocalStorage keeps one file per key under basePath, so records outlive
// the process.
type LocalStorage struct {
	basePath string
}

func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o700); err != nil {
		return nil, err
	}
	return &LocalStorage{basePath: basePath}, nil
}

// getPathFromKey shards by the first two hex bytes of the key so a single
// directory never grows with the number of clients.
func (ls *LocalStorage) getPathFromKey(key string) string {
	name := hex.EncodeToString([]byte(key))
	if len(name) < 4 {
		return filepath.Join(ls.basePath, name)
	}
	return filepath.Join(ls.basePath, name[:2], name[2:4], name)
}

func (ls *LocalStorage) Set(_ context.Context, key string, value []byte) error {
	filePath := ls.getPathFromKey(key)
	dir := filepath.Dir(filePath)

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), filePath)
}

func (ls *LocalStorage) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(ls.getPathFromKey(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("key %s: %w", key, ErrNotFound)
		}
		return nil, err
	}
	return data, nil
}

func (ls *LocalStorage) Delete(_ context.Context, key string) error {
	err := os.Remove(ls.getPathFromKey(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
