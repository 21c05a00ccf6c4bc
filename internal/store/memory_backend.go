package store

import (
	"context"
	"strconv"
	"sync"
)

// MemoryBackend 内存后端，用于开发和测试
type MemoryBackend struct {
	mu       sync.RWMutex
	data     []byte
	revision int64

	// FailSave 非空时 Save 直接返回该错误，用于模拟存储故障
	FailSave error
}

// NewMemoryBackend 创建内存后端
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

func (b *MemoryBackend) Load(ctx context.Context) ([]byte, string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.data == nil {
		return nil, "", nil
	}
	out := make([]byte, len(b.data))
	copy(out, b.data)
	return out, strconv.FormatInt(b.revision, 10), nil
}

func (b *MemoryBackend) Save(ctx context.Context, data []byte, revision string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.FailSave != nil {
		return "", b.FailSave
	}

	current := ""
	if b.data != nil {
		current = strconv.FormatInt(b.revision, 10)
	}
	if current != revision {
		return "", ErrConflict
	}

	b.data = make([]byte, len(data))
	copy(b.data, data)
	b.revision++
	return strconv.FormatInt(b.revision, 10), nil
}

func (b *MemoryBackend) Close() error {
	return nil
}
