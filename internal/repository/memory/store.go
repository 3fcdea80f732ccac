// Package memory 提供与 gorm 仓储行为一致的内存实现，用于本地运行（database.driver=memory）和测试。
package memory

import (
	"context"
	"examhub_backend/internal/model"
	"examhub_backend/internal/service"
	"sort"
	"strings"
	"sync"
	"time"
)

var (
	_ service.ExamStore         = (*Store)(nil)
	_ service.QuestionStore     = (*Store)(nil)
	_ service.AssignmentStore   = (*Store)(nil)
	_ service.EnrollmentGateway = (*Store)(nil)
	_ service.UserDirectory     = (*Store)(nil)
)

type assignmentKey struct {
	examID      string
	candidateID string
}

type Store struct {
	mu sync.RWMutex

	exams     map[string]model.Exam
	examOrder []string
	links     map[string][]model.ExamQuestion
	questions []model.Question

	// (exam_id, candidate_id) 唯一
	assignments     map[assignmentKey]model.ExamCandidateAssignment
	assignmentOrder []assignmentKey

	enrollments []model.CourseEnrollment
	users       map[string]model.User
}

func NewStore() *Store {
	return &Store{
		exams:       make(map[string]model.Exam),
		links:       make(map[string][]model.ExamQuestion),
		assignments: make(map[assignmentKey]model.ExamCandidateAssignment),
		users:       make(map[string]model.User),
	}
}

func (s *Store) GetExam(_ context.Context, id string) (*model.Exam, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.exams[id]
	if !ok {
		return nil, service.ErrNotFound
	}
	return &e, nil
}

func (s *Store) SaveExam(_ context.Context, exam *model.Exam) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	if exam.ID == "" {
		exam.ID = model.GenerateUUID()
	}
	if prev, ok := s.exams[exam.ID]; ok {
		exam.CreatedAt = prev.CreatedAt
	} else {
		exam.CreatedAt = now
		s.examOrder = append(s.examOrder, exam.ID)
	}
	exam.UpdatedAt = now
	s.exams[exam.ID] = *exam
	return exam.ID, nil
}

func (s *Store) UpdateExamStatus(_ context.Context, id string, status model.ExamStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.exams[id]
	if !ok {
		return service.ErrNotFound
	}
	e.Status = status
	e.UpdatedAt = time.Now()
	s.exams[id] = e
	return nil
}

func (s *Store) DeleteExam(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.exams[id]; !ok {
		return service.ErrNotFound
	}
	delete(s.exams, id)
	delete(s.links, id)
	s.examOrder = removeString(s.examOrder, id)

	kept := s.assignmentOrder[:0]
	for _, k := range s.assignmentOrder {
		if k.examID == id {
			delete(s.assignments, k)
			continue
		}
		kept = append(kept, k)
	}
	s.assignmentOrder = kept
	return nil
}

func (s *Store) ReplaceExamQuestions(_ context.Context, examID string, questionIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	links := make([]model.ExamQuestion, 0, len(questionIDs))
	for i, qid := range questionIDs {
		links = append(links, model.ExamQuestion{
			UUIDBase:    model.UUIDBase{ID: model.GenerateUUID(), CreatedAt: time.Now()},
			ExamID:      examID,
			QuestionID:  qid,
			OrderNumber: i + 1,
		})
	}
	s.links[examID] = links
	return nil
}

func (s *Store) ListExamQuestions(_ context.Context, examID string) ([]model.ExamQuestion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := append([]model.ExamQuestion(nil), s.links[examID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].OrderNumber < out[j].OrderNumber })
	return out, nil
}

func (s *Store) ListExamsByCourse(_ context.Context, courseID string) ([]model.Exam, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Exam
	for _, id := range s.examOrder {
		if e := s.exams[id]; e.CourseID == courseID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Store) GetExamsByIDs(_ context.Context, ids []string) ([]model.Exam, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Exam
	for _, id := range ids {
		if e, ok := s.exams[id]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Store) ListPublishedExamsStartingBefore(_ context.Context, t time.Time) ([]model.Exam, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pending := make(map[string]bool)
	for _, a := range s.assignments {
		if a.Status == model.AssignmentScheduled {
			pending[a.ExamID] = true
		}
	}
	var out []model.Exam
	for _, id := range s.examOrder {
		e := s.exams[id]
		if e.Status == model.ExamPublished && e.StartDate != nil && !e.StartDate.After(t) && pending[id] {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Store) ListQuestionsBySubjects(_ context.Context, subjectIDs []string, limit int) ([]model.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wanted := make(map[string]bool, len(subjectIDs))
	for _, id := range subjectIDs {
		wanted[id] = true
	}
	var out []model.Question
	for _, q := range s.questions {
		if limit > 0 && len(out) >= limit {
			break
		}
		if wanted[q.SubjectID] {
			out = append(out, q)
		}
	}
	return out, nil
}

func (s *Store) GetAssignments(_ context.Context, examID string) ([]model.ExamCandidateAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.ExamCandidateAssignment
	for _, k := range s.assignmentOrder {
		if k.examID == examID {
			out = append(out, s.assignments[k])
		}
	}
	return out, nil
}

func (s *Store) InsertAssignments(_ context.Context, rows []model.ExamCandidateAssignment) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	inserted := 0
	for _, row := range rows {
		k := assignmentKey{row.ExamID, row.CandidateID}
		if _, exists := s.assignments[k]; exists {
			continue
		}
		if row.ID == "" {
			row.ID = model.GenerateUUID()
		}
		row.CreatedAt = now
		row.UpdatedAt = now
		s.assignments[k] = row
		s.assignmentOrder = append(s.assignmentOrder, k)
		inserted++
	}
	return inserted, nil
}

func (s *Store) UpdateAssignmentStatus(_ context.Context, examID string, candidateIDs []string, status model.AssignmentStatus) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	updated := 0
	for _, cid := range candidateIDs {
		k := assignmentKey{examID, cid}
		row, ok := s.assignments[k]
		if !ok || row.Status.IsTerminal() || row.Status == status {
			continue
		}
		row.Status = status
		row.UpdatedAt = time.Now()
		s.assignments[k] = row
		updated++
	}
	return updated, nil
}

func (s *Store) ListCandidateAssignments(_ context.Context, candidateID string) ([]model.ExamCandidateAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.ExamCandidateAssignment
	for _, k := range s.assignmentOrder {
		if k.candidateID == candidateID {
			out = append(out, s.assignments[k])
		}
	}
	return out, nil
}

func (s *Store) GetEnrolledCandidateIDs(_ context.Context, courseID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []string
	for _, e := range s.enrollments {
		if e.CourseID == courseID {
			out = append(out, e.UserID)
		}
	}
	return out, nil
}

func (s *Store) ListEnrollments(_ context.Context, courseID string) ([]model.CourseEnrollment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.CourseEnrollment
	for _, e := range s.enrollments {
		if e.CourseID == courseID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Store) Enroll(_ context.Context, courseID string, userIDs []string, enrolledBy string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, uid := range userIDs {
		if s.enrolledLocked(courseID, uid) {
			continue
		}
		now := time.Now()
		s.enrollments = append(s.enrollments, model.CourseEnrollment{
			UUIDBase:   model.UUIDBase{ID: model.GenerateUUID(), CreatedAt: now, UpdatedAt: now},
			CourseID:   courseID,
			UserID:     uid,
			EnrolledBy: enrolledBy,
		})
		n++
	}
	return n, nil
}

func (s *Store) enrolledLocked(courseID, userID string) bool {
	for _, e := range s.enrollments {
		if e.CourseID == courseID && e.UserID == userID {
			return true
		}
	}
	return false
}

func (s *Store) FindUsersByEmails(_ context.Context, emails []string) ([]model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wanted := make(map[string]bool, len(emails))
	for _, e := range emails {
		wanted[strings.ToLower(e)] = true
	}
	var out []model.User
	for _, u := range s.users {
		if wanted[strings.ToLower(u.Email)] {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func removeString(list []string, v string) []string {
	out := list[:0]
	for _, s := range list {
		if s != v {
			out = append(out, s)
		}
	}
	return out
}
