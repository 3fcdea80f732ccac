package repository

import (
	"context"
	"examhub_backend/internal/model"
	"examhub_backend/internal/service"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var _ service.EnrollmentGateway = (*EnrollmentRepository)(nil)

type EnrollmentRepository struct {
	DB *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{DB: db}
}

func (r *EnrollmentRepository) GetEnrolledCandidateIDs(ctx context.Context, courseID string) ([]string, error) {
	var ids []string
	err := r.DB.WithContext(ctx).Model(&model.CourseEnrollment{}).Where("course_id = ?", courseID).Pluck("user_id", &ids).Error
	return ids, errors.Wrap(err, "getting enrolled candidates")
}

func (r *EnrollmentRepository) ListEnrollments(ctx context.Context, courseID string) ([]model.CourseEnrollment, error) {
	var rows []model.CourseEnrollment
	err := r.DB.WithContext(ctx).Where("course_id = ?", courseID).Order("created_at ASC").Find(&rows).Error
	return rows, errors.Wrap(err, "listing enrollments")
}

func (r *EnrollmentRepository) Enroll(ctx context.Context, courseID string, userIDs []string, enrolledBy string) (int, error) {
	if len(userIDs) == 0 {
		return 0, nil
	}
	rows := make([]model.CourseEnrollment, 0, len(userIDs))
	for _, uid := range userIDs {
		rows = append(rows, model.CourseEnrollment{CourseID: courseID, UserID: uid, EnrolledBy: enrolledBy})
	}
	res := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "course_id"}, {Name: "user_id"}}, DoNothing: true}).
		CreateInBatches(&rows, batchSize)
	if res.Error != nil {
		return 0, errors.Wrap(res.Error, "enrolling users")
	}
	return int(res.RowsAffected), nil
}
