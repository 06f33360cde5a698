package uplink

import (
	"context"
	"os"
	"path/filepath"

	rerrors "github.com/raidmeter/raidmeter/internal/errors"
)

// LocalStore implements ObjectStore on the local filesystem. Used for
// development and as the default uplink target.
type LocalStore struct {
	basePath string
}

// NewLocalStore creates a filesystem-backed object store rooted at
// basePath.
func NewLocalStore(basePath string) (*LocalStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, rerrors.NewUplinkError("create uplink directory", err)
	}
	return &LocalStore{basePath: basePath}, nil
}

func (l *LocalStore) Put(ctx context.Context, key string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path := l.fullPath(key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return rerrors.NewUplinkError("create object directory", err)
	}

	// Write via a temp file so a crashed push never leaves a torn object.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0644); err != nil {
		return rerrors.NewUplinkError("write object", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return rerrors.NewUplinkError("publish object", err)
	}
	return nil
}

func (l *LocalStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	payload, err := os.ReadFile(l.fullPath(key))
	if err != nil {
		return nil, rerrors.NewUplinkError("read object", err)
	}
	return payload, nil
}

func (l *LocalStore) Exists(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	_, err := os.Stat(l.fullPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, rerrors.NewUplinkError("stat object", err)
	}
	return true, nil
}

func (l *LocalStore) fullPath(key string) string {
	return filepath.Join(l.basePath, filepath.FromSlash(key))
}
