package service

import (
	"context"
	"errors"
	"examhub_backend/internal/model"
	"examhub_backend/internal/util"
	"time"
)

// CandidateExam 学员视角的考试条目
type CandidateExam struct {
	AssignmentID string                 `json:"assignmentId"`
	Status       model.AssignmentStatus `json:"status"`
	AssignedAt   *time.Time             `json:"assignedAt,omitempty"`
	Exam         model.Exam             `json:"exam"`
}

type AssignmentService struct {
	Exams       ExamStore
	Assignments AssignmentStore
	Sync        *AssignmentSynchronizer
}

func NewAssignmentService(exams ExamStore, assignments AssignmentStore, sync *AssignmentSynchronizer) *AssignmentService {
	return &AssignmentService{Exams: exams, Assignments: assignments, Sync: sync}
}

// CandidateExams 当前学员的考试列表，草稿状态的试卷不展示
func (s *AssignmentService) CandidateExams(ctx context.Context, candidateID string) ([]CandidateExam, error) {
	assignments, err := s.Assignments.ListCandidateAssignments(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	if len(assignments) == 0 {
		return []CandidateExam{}, nil
	}

	ids := make([]string, 0, len(assignments))
	for _, a := range assignments {
		ids = append(ids, a.ExamID)
	}
	exams, err := s.Exams.GetExamsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]model.Exam, len(exams))
	for _, e := range exams {
		byID[e.ID] = e
	}

	out := make([]CandidateExam, 0, len(assignments))
	for _, a := range assignments {
		exam, ok := byID[a.ExamID]
		if !ok || exam.Status == model.ExamDraft {
			continue
		}
		out = append(out, CandidateExam{
			AssignmentID: a.ID,
			Status:       a.Status,
			AssignedAt:   a.AssignedAt,
			Exam:         exam,
		})
	}
	return out, nil
}

func (s *AssignmentService) ExamAssignments(ctx context.Context, actor Actor, examID string) ([]model.ExamCandidateAssignment, error) {
	exam, err := s.Exams.GetExam(ctx, examID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, util.ErrExamNotFound
		}
		return nil, err
	}
	if !canManage(actor, exam) {
		return nil, util.ErrPermissionDenied
	}
	return s.Assignments.GetAssignments(ctx, examID)
}

// Resync 手动触发一次同步
func (s *AssignmentService) Resync(ctx context.Context, actor Actor, examID string) SyncResult {
	exam, err := s.Exams.GetExam(ctx, examID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return SyncResult{Result: Fail(util.ErrExamNotFound.Error(), util.ErrExamNotFound)}
		}
		return SyncResult{Result: Fail("Failed to load exam", err)}
	}
	if !canManage(actor, exam) {
		return SyncResult{Result: Fail("You do not have permission to modify this exam", util.ErrPermissionDenied)}
	}
	return s.Sync.SyncExam(ctx, exam)
}
