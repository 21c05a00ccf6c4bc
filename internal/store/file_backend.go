package store

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/zeebo/blake3"
)

// FileBackend 将 blob 保存为本地 JSON 文件，revision 为文件内容的 blake3 摘要
type FileBackend struct {
	path string
	mu   sync.Mutex
}

// NewFileBackend 创建文件后端，必要时创建目录
func NewFileBackend(path string) (*FileBackend, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &FileBackend{path: path}, nil
}

func (b *FileBackend) Load(ctx context.Context) ([]byte, string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.read()
}

func (b *FileBackend) Save(ctx context.Context, data []byte, revision string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	_, current, err := b.read()
	if err != nil {
		return "", err
	}
	if current != revision {
		return "", ErrConflict
	}

	tmp, err := os.CreateTemp(filepath.Dir(b.path), ".blob-*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), b.path); err != nil {
		return "", err
	}
	return digest(data), nil
}

func (b *FileBackend) Close() error {
	return nil
}

func (b *FileBackend) read() ([]byte, string, error) {
	data, err := os.ReadFile(b.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", err
	}
	return data, digest(data), nil
}

func digest(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
