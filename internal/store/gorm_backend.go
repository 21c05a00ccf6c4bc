package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"assetdesk/internal/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormBackend 将 blob 存放在 record_blobs 表的一行中，用 revision 列做乐观锁
type GormBackend struct {
	db        *gorm.DB
	namespace string
}

// NewGormBackend 创建数据库后端，表结构由 database.Migrate 负责
func NewGormBackend(db *gorm.DB, namespace string) *GormBackend {
	return &GormBackend{db: db, namespace: namespace}
}

func (b *GormBackend) Load(ctx context.Context) ([]byte, string, error) {
	var blob models.RecordBlob
	err := b.db.WithContext(ctx).Where("namespace = ?", b.namespace).First(&blob).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", err
	}
	return []byte(blob.Data), strconv.FormatInt(blob.Revision, 10), nil
}

func (b *GormBackend) Save(ctx context.Context, data []byte, revision string) (string, error) {
	db := b.db.WithContext(ctx)

	// 首次写入
	if revision == "" {
		blob := models.RecordBlob{
			Namespace: b.namespace,
			Data:      datatypes.JSON(data),
			Revision:  1,
		}
		res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&blob)
		if res.Error != nil {
			return "", res.Error
		}
		if res.RowsAffected == 0 {
			return "", ErrConflict
		}
		return "1", nil
	}

	current, err := strconv.ParseInt(revision, 10, 64)
	if err != nil {
		return "", fmt.Errorf("invalid revision %q: %w", revision, err)
	}

	res := db.Model(&models.RecordBlob{}).
		Where("namespace = ? AND revision = ?", b.namespace, current).
		Updates(map[string]interface{}{
			"data":       datatypes.JSON(data),
			"revision":   current + 1,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return "", res.Error
	}
	if res.RowsAffected == 0 {
		return "", ErrConflict
	}
	return strconv.FormatInt(current+1, 10), nil
}

// Close 连接由 database 包统一关闭
func (b *GormBackend) Close() error {
	return nil
}
