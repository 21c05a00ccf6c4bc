package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// 集合名称
const (
	CollectionOrganizations = "organizations"
	CollectionTeams         = "teams"
	CollectionPeople        = "people"
	CollectionLicenses      = "licenses"
	CollectionAssets        = "assets"
	CollectionInventory     = "inventory"
)

// Collections 初始化时创建的全部集合
var Collections = []string{
	CollectionOrganizations,
	CollectionTeams,
	CollectionPeople,
	CollectionLicenses,
	CollectionAssets,
	CollectionInventory,
}

var (
	// ErrConflict 提交时 blob 已被其他写入方修改
	ErrConflict = errors.New("store: blob modified by another writer")
	// ErrReadOnly 在只读事务中写入
	ErrReadOnly = errors.New("store: write in read-only transaction")
)

// Record 一条扁平记录，字段名使用下划线风格
type Record = json.RawMessage

// Backend 持久化整个 blob 的后端
//
// Load 在 blob 不存在时返回 nil 数据和空 revision。Save 只有在当前 revision
// 仍等于调用方读取时的 revision 才会写入，否则返回 ErrConflict。
type Backend interface {
	Load(ctx context.Context) (data []byte, revision string, err error)
	Save(ctx context.Context, data []byte, revision string) (string, error)
	Close() error
}

// Store 基于单个 blob 的集合存储
type Store struct {
	backend Backend
	mu      sync.Mutex // 串行化进程内的写事务
}

// New 创建存储
func New(backend Backend) *Store {
	return &Store{backend: backend}
}

// Close 关闭后端
func (s *Store) Close() error {
	return s.backend.Close()
}

// View 在只读快照上执行 fn
func (s *Store) View(ctx context.Context, fn func(tx *Tx) error) error {
	tx, _, err := s.begin(ctx, false)
	if err != nil {
		return err
	}
	return fn(tx)
}

// Update 工作单元：读取整个 blob，执行 fn，fn 成功时一次性提交所有修改过的集合
func (s *Store) Update(ctx context.Context, fn func(tx *Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, revision, err := s.begin(ctx, true)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		return err
	}
	if len(tx.dirty) == 0 {
		return nil
	}

	data, err := json.Marshal(tx.tables)
	if err != nil {
		return fmt.Errorf("encode blob: %w", err)
	}
	if _, err := s.backend.Save(ctx, data, revision); err != nil {
		if errors.Is(err, ErrConflict) {
			return err
		}
		return fmt.Errorf("save blob: %w", err)
	}
	return nil
}

// ReadCollection 读取集合，不存在时返回空切片
func (s *Store) ReadCollection(ctx context.Context, name string) ([]Record, error) {
	var records []Record
	err := s.View(ctx, func(tx *Tx) error {
		var err error
		records, err = tx.Read(name)
		return err
	})
	return records, err
}

// WriteCollection 整体替换集合
func (s *Store) WriteCollection(ctx context.Context, name string, records []Record) error {
	return s.Update(ctx, func(tx *Tx) error {
		return tx.Write(name, records)
	})
}

func (s *Store) begin(ctx context.Context, writable bool) (*Tx, string, error) {
	data, revision, err := s.backend.Load(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("load blob: %w", err)
	}

	tx := &Tx{
		tables:   make(map[string]json.RawMessage),
		dirty:    make(map[string]bool),
		writable: writable,
		exists:   data != nil,
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &tx.tables); err != nil {
			return nil, "", fmt.Errorf("decode blob: %w", err)
		}
	}
	return tx, revision, nil
}

// Tx 一次读写事务中的 blob 视图
type Tx struct {
	tables   map[string]json.RawMessage
	dirty    map[string]bool
	writable bool
	exists   bool
}

// Exists blob 在事务开始时是否已经存在
func (tx *Tx) Exists() bool {
	return tx.exists
}

// Read 读取集合中的原始记录
func (tx *Tx) Read(name string) ([]Record, error) {
	raw, ok := tx.tables[name]
	if !ok || len(raw) == 0 {
		return []Record{}, nil
	}
	var records []Record
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode collection %s: %w", name, err)
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}

// Write 替换集合中的全部记录
func (tx *Tx) Write(name string, records []Record) error {
	if records == nil {
		records = []Record{}
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode collection %s: %w", name, err)
	}
	return tx.put(name, raw)
}

func (tx *Tx) put(name string, raw json.RawMessage) error {
	if !tx.writable {
		return ErrReadOnly
	}
	tx.tables[name] = raw
	tx.dirty[name] = true
	return nil
}

// ReadRows 将集合解码为行结构
func ReadRows[T any](tx *Tx, name string) ([]T, error) {
	raw, ok := tx.tables[name]
	if !ok || len(raw) == 0 {
		return []T{}, nil
	}
	var rows []T
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("decode collection %s: %w", name, err)
	}
	if rows == nil {
		rows = []T{}
	}
	return rows, nil
}

// WriteRows 将行结构编码后整体写回集合
func WriteRows[T any](tx *Tx, name string, rows []T) error {
	if rows == nil {
		rows = []T{}
	}
	raw, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("encode collection %s: %w", name, err)
	}
	return tx.put(name, raw)
}
