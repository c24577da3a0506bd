package user

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

// StorageKey names the single persisted collection.
const StorageKey = "farmlink_users_v2"

// Persister stores the whole users collection as one JSON document.
type Persister interface {
	Load(ctx context.Context) ([]User, error)
	Save(ctx context.Context, users []User) error
}

func decodeSnapshot(raw []byte) ([]User, error) {
	var users []User
	if err := json.Unmarshal(raw, &users); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSnapshotCorrupt, err)
	}
	return users, nil
}

type filePersister struct {
	path string
	mu   sync.Mutex
}

// NewFilePersister keeps the snapshot at <dir>/farmlink_users_v2.json.
func NewFilePersister(dir string) Persister {
	return &filePersister{path: filepath.Join(dir, StorageKey+".json")}
}

func (p *filePersister) Load(ctx context.Context) ([]User, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	raw, err := os.ReadFile(p.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeSnapshot(raw)
}

func (p *filePersister) Save(ctx context.Context, users []User) error {
	raw, err := json.Marshal(users)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return err
	}
	tmp := p.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, p.path)
}

type memoryPersister struct {
	mu  sync.Mutex
	raw []byte
}

// NewMemoryPersister keeps the snapshot in process memory; used for tests and
// the "memory" storage driver.
func NewMemoryPersister() Persister {
	return &memoryPersister{}
}

func (p *memoryPersister) Load(ctx context.Context) ([]User, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.raw == nil {
		return nil, ErrSnapshotNotFound
	}
	return decodeSnapshot(p.raw)
}

func (p *memoryPersister) Save(ctx context.Context, users []User) error {
	raw, err := json.Marshal(users)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.raw = raw
	p.mu.Unlock()
	return nil
}
