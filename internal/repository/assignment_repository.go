package repository

import (
	"context"
	"examhub_backend/internal/model"
	"examhub_backend/internal/service"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const batchSize = 500

var _ service.AssignmentStore = (*AssignmentRepository)(nil)

type AssignmentRepository struct {
	DB *gorm.DB
}

func NewAssignmentRepository(db *gorm.DB) *AssignmentRepository {
	return &AssignmentRepository{DB: db}
}

func (r *AssignmentRepository) GetAssignments(ctx context.Context, examID string) ([]model.ExamCandidateAssignment, error) {
	var rows []model.ExamCandidateAssignment
	err := r.DB.WithContext(ctx).Where("exam_id = ?", examID).Order("created_at ASC").Find(&rows).Error
	return rows, errors.Wrap(err, "getting exam assignments")
}

// InsertAssignments 依赖 (exam_id, candidate_id) 唯一索引，冲突行不计入插入数
func (r *AssignmentRepository) InsertAssignments(ctx context.Context, rows []model.ExamCandidateAssignment) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	res := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "exam_id"}, {Name: "candidate_id"}}, DoNothing: true}).
		CreateInBatches(&rows, batchSize)
	if res.Error != nil {
		return 0, errors.Wrap(res.Error, "inserting assignments")
	}
	return int(res.RowsAffected), nil
}

// UpdateAssignmentStatus completed 为终态，在 SQL 条件中排除
func (r *AssignmentRepository) UpdateAssignmentStatus(ctx context.Context, examID string, candidateIDs []string, status model.AssignmentStatus) (int, error) {
	var total int64
	for start := 0; start < len(candidateIDs); start += batchSize {
		end := start + batchSize
		if end > len(candidateIDs) {
			end = len(candidateIDs)
		}
		res := r.DB.WithContext(ctx).Model(&model.ExamCandidateAssignment{}).
			Where("exam_id = ? AND candidate_id IN ?", examID, candidateIDs[start:end]).
			Where("status NOT IN ?", []model.AssignmentStatus{model.AssignmentCompleted, status}).
			Update("status", status)
		if res.Error != nil {
			return int(total), errors.Wrap(res.Error, "updating assignment status")
		}
		total += res.RowsAffected
	}
	return int(total), nil
}

func (r *AssignmentRepository) ListCandidateAssignments(ctx context.Context, candidateID string) ([]model.ExamCandidateAssignment, error) {
	var rows []model.ExamCandidateAssignment
	err := r.DB.WithContext(ctx).Where("candidate_id = ?", candidateID).Order("created_at ASC").Find(&rows).Error
	return rows, errors.Wrap(err, "listing candidate assignments")
}
