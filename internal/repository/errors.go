package repository

import (
	"examhub_backend/internal/service"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// notFound 把 gorm.ErrRecordNotFound 转换为 service.ErrNotFound，其余错误附加上下文
func notFound(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return service.ErrNotFound
	}
	return errors.Wrap(err, msg)
}
