package service

import (
	"context"
	"examhub_backend/internal/model"
	"time"
)

// ExamStore 试卷、题目关联及题库查询
type ExamStore interface {
	GetExam(ctx context.Context, id string) (*model.Exam, error)
	// SaveExam 新建或更新试卷，返回试卷 ID
	SaveExam(ctx context.Context, exam *model.Exam) (string, error)
	UpdateExamStatus(ctx context.Context, id string, status model.ExamStatus) error
	// DeleteExam 级联删除题目关联与分配记录
	DeleteExam(ctx context.Context, id string) error
	ReplaceExamQuestions(ctx context.Context, examID string, questionIDs []string) error
	ListExamQuestions(ctx context.Context, examID string) ([]model.ExamQuestion, error)
	ListExamsByCourse(ctx context.Context, courseID string) ([]model.Exam, error)
	GetExamsByIDs(ctx context.Context, ids []string) ([]model.Exam, error)
	// ListPublishedExamsStartingBefore 已发布、开始时间不晚于 t 且仍有 scheduled 分配的试卷
	ListPublishedExamsStartingBefore(ctx context.Context, t time.Time) ([]model.Exam, error)
}

type QuestionStore interface {
	ListQuestionsBySubjects(ctx context.Context, subjectIDs []string, limit int) ([]model.Question, error)
}

// AssignmentStore 分配记录，(exam_id, candidate_id) 唯一
type AssignmentStore interface {
	GetAssignments(ctx context.Context, examID string) ([]model.ExamCandidateAssignment, error)
	// InsertAssignments 冲突的记录忽略，返回实际插入条数
	InsertAssignments(ctx context.Context, rows []model.ExamCandidateAssignment) (int, error)
	// UpdateAssignmentStatus 不会改写 completed 记录，返回实际更新条数
	UpdateAssignmentStatus(ctx context.Context, examID string, candidateIDs []string, status model.AssignmentStatus) (int, error)
	ListCandidateAssignments(ctx context.Context, candidateID string) ([]model.ExamCandidateAssignment, error)
}

// EnrollmentGateway 课程报名信息
type EnrollmentGateway interface {
	GetEnrolledCandidateIDs(ctx context.Context, courseID string) ([]string, error)
	ListEnrollments(ctx context.Context, courseID string) ([]model.CourseEnrollment, error)
	// Enroll 已报名的用户忽略，返回新增条数
	Enroll(ctx context.Context, courseID string, userIDs []string, enrolledBy string) (int, error)
}

type UserDirectory interface {
	FindUsersByEmails(ctx context.Context, emails []string) ([]model.User, error)
}
