package thumbcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileStore persists thumbnails on the local filesystem, one JSON file per
// product id. It is intended for deployments without a Redis instance.
type FileStore struct {
	basePath string
}

// NewFileStore initializes a FileStore rooted at basePath.
func NewFileStore(basePath string) (*FileStore, error) {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		return nil, errors.New("thumbcache: base path is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("thumbcache: ensure base path: %w", err)
	}
	return &FileStore{basePath: basePath}, nil
}

func (s *FileStore) Get(ctx context.Context, productID string) (Asset, bool, error) {
	if err := ctx.Err(); err != nil {
		return Asset{}, false, err
	}
	path, err := s.entryPath(productID)
	if err != nil {
		return Asset{}, false, err
	}
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Asset{}, false, nil
	}
	if err != nil {
		return Asset{}, false, fmt.Errorf("thumbcache: read entry: %w", err)
	}
	var a Asset
	if err := json.Unmarshal(raw, &a); err != nil {
		return Asset{}, false, fmt.Errorf("thumbcache: decode entry: %w", err)
	}
	return a, true, nil
}

func (s *FileStore) Set(ctx context.Context, productID string, asset Asset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.entryPath(productID)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(asset)
	if err != nil {
		return fmt.Errorf("thumbcache: encode entry: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("thumbcache: write entry: %w", err)
	}
	return nil
}

func (s *FileStore) Invalidate(ctx context.Context, productID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.entryPath(productID)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("thumbcache: remove entry: %w", err)
	}
	return nil
}

func (s *FileStore) Durable() bool { return true }

// entryPath maps a product id onto a file inside the store root. Ids are
// sanitized so a crafted id cannot escape the base path.
func (s *FileStore) entryPath(productID string) (string, error) {
	id := strings.TrimSpace(productID)
	if id == "" {
		return "", errors.New("thumbcache: product id is required")
	}
	var b strings.Builder
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return filepath.Join(s.basePath, b.String()+".json"), nil
}
