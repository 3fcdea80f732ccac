package repository

import (
	"context"
	"examhub_backend/internal/model"
	"examhub_backend/internal/service"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var _ service.UserDirectory = (*UserRepository)(nil)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

// FindUsersByEmails 邮箱不区分大小写
func (r *UserRepository) FindUsersByEmails(ctx context.Context, emails []string) ([]model.User, error) {
	var users []model.User
	if len(emails) == 0 {
		return users, nil
	}
	lowered := make([]string, 0, len(emails))
	for _, e := range emails {
		lowered = append(lowered, strings.ToLower(e))
	}
	err := r.DB.WithContext(ctx).Where("LOWER(email) IN ?", lowered).Order("email ASC").Find(&users).Error
	return users, errors.Wrap(err, "finding users by email")
}
