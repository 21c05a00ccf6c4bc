package store

import (
	"context"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// CompressedBackend 在写入前用 zstd 压缩 blob，读取时解压
type CompressedBackend struct {
	inner Backend
	enc   *zstd.Encoder
	dec   *zstd.Decoder
}

// NewCompressedBackend 包装一个按字节存储的后端
func NewCompressedBackend(inner Backend) (*CompressedBackend, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, err
	}
	return &CompressedBackend{inner: inner, enc: enc, dec: dec}, nil
}

func (b *CompressedBackend) Load(ctx context.Context) ([]byte, string, error) {
	data, revision, err := b.inner.Load(ctx)
	if err != nil || data == nil {
		return data, revision, err
	}
	plain, err := b.dec.DecodeAll(data, nil)
	if err != nil {
		return nil, "", fmt.Errorf("decompress blob: %w", err)
	}
	return plain, revision, nil
}

func (b *CompressedBackend) Save(ctx context.Context, data []byte, revision string) (string, error) {
	return b.inner.Save(ctx, b.enc.EncodeAll(data, nil), revision)
}

func (b *CompressedBackend) Close() error {
	b.enc.Close()
	b.dec.Close()
	return b.inner.Close()
}
