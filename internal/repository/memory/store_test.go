package memory

import (
	"context"
	"examhub_backend/internal/model"
	"examhub_backend/internal/service"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertAssignmentsIgnoresDuplicates(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	rows := []model.ExamCandidateAssignment{
		{ExamID: "e1", CandidateID: "c1", Status: model.AssignmentPending},
		{ExamID: "e1", CandidateID: "c2", Status: model.AssignmentPending},
	}
	n, err := s.InsertAssignments(ctx, rows)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = s.InsertAssignments(ctx, []model.ExamCandidateAssignment{
		{ExamID: "e1", CandidateID: "c1", Status: model.AssignmentAvailable},
		{ExamID: "e1", CandidateID: "c3", Status: model.AssignmentAvailable},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 3, s.AssignmentCount("e1"))

	got, err := s.GetAssignments(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, model.AssignmentPending, got[0].Status, "existing row must not be overwritten by insert")
}

func TestUpdateAssignmentStatusSkipsCompleted(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	_, err := s.InsertAssignments(ctx, []model.ExamCandidateAssignment{
		{ExamID: "e1", CandidateID: "c1", Status: model.AssignmentPending},
		{ExamID: "e1", CandidateID: "c2", Status: model.AssignmentPending},
		{ExamID: "e1", CandidateID: "c3", Status: model.AssignmentAvailable},
	})
	require.NoError(t, err)
	require.True(t, s.SetAssignmentStatus("e1", "c2", model.AssignmentCompleted))

	n, err := s.UpdateAssignmentStatus(ctx, "e1", []string{"c1", "c2", "c3", "missing"}, model.AssignmentAvailable)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, _ := s.GetAssignments(ctx, "e1")
	statuses := map[string]model.AssignmentStatus{}
	for _, a := range got {
		statuses[a.CandidateID] = a.Status
	}
	assert.Equal(t, model.AssignmentAvailable, statuses["c1"])
	assert.Equal(t, model.AssignmentCompleted, statuses["c2"])
	assert.Equal(t, model.AssignmentAvailable, statuses["c3"])
}

func TestDeleteExamCascades(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	id, err := s.SaveExam(ctx, &model.Exam{Title: "Midterm", CourseID: "course"})
	require.NoError(t, err)
	other, err := s.SaveExam(ctx, &model.Exam{Title: "Final", CourseID: "course"})
	require.NoError(t, err)

	require.NoError(t, s.ReplaceExamQuestions(ctx, id, []string{"q1", "q2"}))
	_, err = s.InsertAssignments(ctx, []model.ExamCandidateAssignment{
		{ExamID: id, CandidateID: "c1", Status: model.AssignmentPending},
		{ExamID: other, CandidateID: "c1", Status: model.AssignmentPending},
	})
	require.NoError(t, err)

	require.NoError(t, s.DeleteExam(ctx, id))

	_, err = s.GetExam(ctx, id)
	assert.ErrorIs(t, err, service.ErrNotFound)
	links, _ := s.ListExamQuestions(ctx, id)
	assert.Empty(t, links)
	assert.Equal(t, 0, s.AssignmentCount(id))
	assert.Equal(t, 1, s.AssignmentCount(other))

	assert.ErrorIs(t, s.DeleteExam(ctx, id), service.ErrNotFound)
}

func TestReplaceExamQuestionsOrders(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.ReplaceExamQuestions(ctx, "e1", []string{"a", "b", "c"}))
	require.NoError(t, s.ReplaceExamQuestions(ctx, "e1", []string{"c", "a"}))

	links, err := s.ListExamQuestions(ctx, "e1")
	require.NoError(t, err)
	require.Len(t, links, 2)
	assert.Equal(t, "c", links[0].QuestionID)
	assert.Equal(t, 1, links[0].OrderNumber)
	assert.Equal(t, "a", links[1].QuestionID)
	assert.Equal(t, 2, links[1].OrderNumber)
}

func TestListPublishedExamsStartingBefore(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	started, _ := s.SaveExam(ctx, &model.Exam{CourseID: "c", Status: model.ExamPublished, StartDate: &past})
	notYet, _ := s.SaveExam(ctx, &model.Exam{CourseID: "c", Status: model.ExamPublished, StartDate: &future})
	draft, _ := s.SaveExam(ctx, &model.Exam{CourseID: "c", Status: model.ExamDraft, StartDate: &past})
	settled, _ := s.SaveExam(ctx, &model.Exam{CourseID: "c", Status: model.ExamPublished, StartDate: &past})

	_, err := s.InsertAssignments(ctx, []model.ExamCandidateAssignment{
		{ExamID: started, CandidateID: "u", Status: model.AssignmentScheduled},
		{ExamID: notYet, CandidateID: "u", Status: model.AssignmentScheduled},
		{ExamID: draft, CandidateID: "u", Status: model.AssignmentScheduled},
		{ExamID: settled, CandidateID: "u", Status: model.AssignmentAvailable},
	})
	require.NoError(t, err)

	exams, err := s.ListPublishedExamsStartingBefore(ctx, now)
	require.NoError(t, err)
	require.Len(t, exams, 1)
	assert.Equal(t, started, exams[0].ID)
}

func TestListQuestionsBySubjectsLimit(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	for i := 0; i < 5; i++ {
		s.AddQuestion(model.Question{SubjectID: "math"})
	}
	s.AddQuestion(model.Question{SubjectID: "bio"})

	qs, err := s.ListQuestionsBySubjects(ctx, []string{"math"}, 3)
	require.NoError(t, err)
	assert.Len(t, qs, 3)

	qs, err = s.ListQuestionsBySubjects(ctx, []string{"math", "bio"}, 0)
	require.NoError(t, err)
	assert.Len(t, qs, 6)
}

func TestEnrollAndFindUsers(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	a := s.AddUser(model.User{Email: "Ada@Example.com"})
	b := s.AddUser(model.User{Email: "bob@example.com"})

	users, err := s.FindUsersByEmails(ctx, []string{"ada@example.com", "nobody@example.com"})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, a, users[0].ID)

	n, err := s.Enroll(ctx, "course", []string{a, b}, "instructor")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = s.Enroll(ctx, "course", []string{a}, "instructor")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	ids, err := s.GetEnrolledCandidateIDs(ctx, "course")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a, b}, ids)

	enrollments, err := s.ListEnrollments(ctx, "course")
	require.NoError(t, err)
	assert.Equal(t, "instructor", enrollments[0].EnrolledBy)
}
