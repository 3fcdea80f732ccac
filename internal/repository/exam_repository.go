package repository

import (
	"context"
	"examhub_backend/internal/model"
	"examhub_backend/internal/service"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var _ service.ExamStore = (*ExamRepository)(nil)

type ExamRepository struct {
	DB *gorm.DB
}

func NewExamRepository(db *gorm.DB) *ExamRepository {
	return &ExamRepository{DB: db}
}

func (r *ExamRepository) GetExam(ctx context.Context, id string) (*model.Exam, error) {
	var exam model.Exam
	if err := r.DB.WithContext(ctx).First(&exam, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "getting exam")
	}
	return &exam, nil
}

func (r *ExamRepository) SaveExam(ctx context.Context, exam *model.Exam) (string, error) {
	db := r.DB.WithContext(ctx)
	var err error
	if exam.ID == "" {
		err = db.Create(exam).Error
	} else {
		err = db.Save(exam).Error
	}
	if err != nil {
		return "", errors.Wrap(err, "saving exam")
	}
	return exam.ID, nil
}

func (r *ExamRepository) UpdateExamStatus(ctx context.Context, id string, status model.ExamStatus) error {
	res := r.DB.WithContext(ctx).Model(&model.Exam{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return errors.Wrap(res.Error, "updating exam status")
	}
	if res.RowsAffected == 0 {
		// 状态未变化时 MySQL 也返回 0，需确认记录是否存在
		var count int64
		if err := r.DB.WithContext(ctx).Model(&model.Exam{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return errors.Wrap(err, "checking exam")
		}
		if count == 0 {
			return service.ErrNotFound
		}
	}
	return nil
}

// DeleteExam 在一个事务内删除题目关联、分配记录和试卷
func (r *ExamRepository) DeleteExam(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("exam_id = ?", id).Delete(&model.ExamQuestion{}).Error; err != nil {
			return errors.Wrap(err, "deleting exam questions")
		}
		if err := tx.Where("exam_id = ?", id).Delete(&model.ExamCandidateAssignment{}).Error; err != nil {
			return errors.Wrap(err, "deleting exam assignments")
		}
		res := tx.Where("id = ?", id).Delete(&model.Exam{})
		if res.Error != nil {
			return errors.Wrap(res.Error, "deleting exam")
		}
		if res.RowsAffected == 0 {
			return service.ErrNotFound
		}
		return nil
	})
}

// ReplaceExamQuestions 全量替换，不做增量比对
func (r *ExamRepository) ReplaceExamQuestions(ctx context.Context, examID string, questionIDs []string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("exam_id = ?", examID).Delete(&model.ExamQuestion{}).Error; err != nil {
			return errors.Wrap(err, "clearing exam questions")
		}
		if len(questionIDs) == 0 {
			return nil
		}
		links := make([]model.ExamQuestion, 0, len(questionIDs))
		for i, qid := range questionIDs {
			links = append(links, model.ExamQuestion{ExamID: examID, QuestionID: qid, OrderNumber: i + 1})
		}
		if err := tx.CreateInBatches(&links, batchSize).Error; err != nil {
			return errors.Wrap(err, "inserting exam questions")
		}
		return nil
	})
}

func (r *ExamRepository) ListExamQuestions(ctx context.Context, examID string) ([]model.ExamQuestion, error) {
	var links []model.ExamQuestion
	err := r.DB.WithContext(ctx).Where("exam_id = ?", examID).Order("order_number ASC").Find(&links).Error
	return links, errors.Wrap(err, "listing exam questions")
}

func (r *ExamRepository) ListExamsByCourse(ctx context.Context, courseID string) ([]model.Exam, error) {
	var exams []model.Exam
	err := r.DB.WithContext(ctx).Where("course_id = ?", courseID).Order("created_at ASC").Find(&exams).Error
	return exams, errors.Wrap(err, "listing course exams")
}

func (r *ExamRepository) GetExamsByIDs(ctx context.Context, ids []string) ([]model.Exam, error) {
	var exams []model.Exam
	if len(ids) == 0 {
		return exams, nil
	}
	err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&exams).Error
	return exams, errors.Wrap(err, "getting exams by ids")
}

func (r *ExamRepository) ListPublishedExamsStartingBefore(ctx context.Context, t time.Time) ([]model.Exam, error) {
	var exams []model.Exam
	scheduled := r.DB.Model(&model.ExamCandidateAssignment{}).
		Select("1").
		Where("exam_candidate_assignments.exam_id = exams.id AND exam_candidate_assignments.status = ?", model.AssignmentScheduled)
	err := r.DB.WithContext(ctx).
		Where("status = ? AND start_date IS NOT NULL AND start_date <= ?", model.ExamPublished, t).
		Where("EXISTS (?)", scheduled).
		Find(&exams).Error
	return exams, errors.Wrap(err, "listing started exams")
}
