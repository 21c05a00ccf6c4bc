package services

import (
	"errors"
	"fmt"

	"assetdesk/pkg/logger"

	"github.com/sirupsen/logrus"
)

var (
	// ErrNotFound 按 ID 读取时记录不存在。更新和删除不返回该错误
	ErrNotFound = errors.New("record not found")
	// ErrCapacityExceeded 许可证席位已满
	ErrCapacityExceeded = errors.New("license capacity exceeded")
)

// ValidationError 参数校验失败，操作未执行任何写入
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func newValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsValidationError 判断是否为校验错误
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func capacityExceeded(licenseID string, total int) error {
	return fmt.Errorf("%w: license %s has %d seats", ErrCapacityExceeded, licenseID, total)
}

// logMissing 更新、删除目标不存在时静默返回，但留下日志
func logMissing(entity, id, operation string) {
	logger.GetLogger().WithFields(logrus.Fields{
		"entity":    entity,
		"id":        id,
		"operation": operation,
	}).Warn("target record not found, operation skipped")
}
