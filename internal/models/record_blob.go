package models

import (
	"time"

	"gorm.io/datatypes"
)

// RecordBlob 记录存储在 PostgreSQL 中的整块数据
type RecordBlob struct {
	Namespace string         `gorm:"primaryKey;size:100" json:"namespace"`
	Data      datatypes.JSON `gorm:"type:jsonb;not null" json:"data"`
	Revision  int64          `gorm:"not null;default:0" json:"revision"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// TableName 表名
func (RecordBlob) TableName() string {
	return "record_blobs"
}
