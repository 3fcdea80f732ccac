package repository

import (
	"context"
	"examhub_backend/internal/model"
	"examhub_backend/internal/service"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var _ service.QuestionStore = (*QuestionRepository)(nil)

// QuestionRepository 只读，题库维护不在本服务范围内
type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

func (r *QuestionRepository) ListQuestionsBySubjects(ctx context.Context, subjectIDs []string, limit int) ([]model.Question, error) {
	var questions []model.Question
	if len(subjectIDs) == 0 {
		return questions, nil
	}
	q := r.DB.WithContext(ctx).Where("subject_id IN ?", subjectIDs).Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&questions).Error
	return questions, errors.Wrap(err, "listing questions by subjects")
}
