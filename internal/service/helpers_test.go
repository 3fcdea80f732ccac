package service_test

import (
	"context"
	"examhub_backend/internal/model"
	"examhub_backend/internal/repository/memory"
	"examhub_backend/internal/service"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

type fixture struct {
	store    *memory.Store
	sync     *service.AssignmentSynchronizer
	notifier *recordingNotifier
	mu       sync.Mutex
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{store: memory.NewStore(), notifier: &recordingNotifier{}, now: baseTime}
	f.sync = service.NewAssignmentSynchronizer(f.store, f.store, service.NewLocalSyncLocker(2*time.Second), f.notifier)
	f.sync.Now = f.clock
	return f
}

func (f *fixture) clock() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fixture) advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

// enroll 创建 n 个学员并报名到课程
func (f *fixture) enroll(t *testing.T, courseID string, n int) []string {
	t.Helper()
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		id := f.store.AddUser(model.User{Email: fmt.Sprintf("%s-%d-%d@example.com", courseID, i, time.Now().UnixNano())})
		ids = append(ids, id)
	}
	_, err := f.store.Enroll(context.Background(), courseID, ids, "instructor-1")
	require.NoError(t, err)
	return ids
}

func (f *fixture) saveExam(t *testing.T, exam *model.Exam) *model.Exam {
	t.Helper()
	_, err := f.store.SaveExam(context.Background(), exam)
	require.NoError(t, err)
	return exam
}

func (f *fixture) statuses(t *testing.T, examID string) map[string]model.AssignmentStatus {
	t.Helper()
	rows, err := f.store.GetAssignments(context.Background(), examID)
	require.NoError(t, err)
	out := make(map[string]model.AssignmentStatus, len(rows))
	for _, r := range rows {
		out[r.CandidateID] = r.Status
	}
	return out
}

func timePtr(t time.Time) *time.Time {
	return &t
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []service.AssignmentEvent
	err    error
}

func (n *recordingNotifier) Notify(_ context.Context, e service.AssignmentEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
	return n.err
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.events)
}

type faultyAssignments struct {
	service.AssignmentStore
	getErr    error
	insertErr error
	updateErr error
}

func (f *faultyAssignments) GetAssignments(ctx context.Context, examID string) ([]model.ExamCandidateAssignment, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.AssignmentStore.GetAssignments(ctx, examID)
}

func (f *faultyAssignments) InsertAssignments(ctx context.Context, rows []model.ExamCandidateAssignment) (int, error) {
	if f.insertErr != nil {
		return 0, f.insertErr
	}
	return f.AssignmentStore.InsertAssignments(ctx, rows)
}

func (f *faultyAssignments) UpdateAssignmentStatus(ctx context.Context, examID string, ids []string, status model.AssignmentStatus) (int, error) {
	if f.updateErr != nil {
		return 0, f.updateErr
	}
	return f.AssignmentStore.UpdateAssignmentStatus(ctx, examID, ids, status)
}

type faultyEnrollments struct {
	service.EnrollmentGateway
	err      error
	panicMsg string
}

func (f *faultyEnrollments) GetEnrolledCandidateIDs(ctx context.Context, courseID string) ([]string, error) {
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.EnrollmentGateway.GetEnrolledCandidateIDs(ctx, courseID)
}

type faultyExams struct {
	service.ExamStore
	saveErr    error
	replaceErr error
}

func (f *faultyExams) SaveExam(ctx context.Context, exam *model.Exam) (string, error) {
	if f.saveErr != nil {
		return "", f.saveErr
	}
	return f.ExamStore.SaveExam(ctx, exam)
}

func (f *faultyExams) ReplaceExamQuestions(ctx context.Context, examID string, ids []string) error {
	if f.replaceErr != nil {
		return f.replaceErr
	}
	return f.ExamStore.ReplaceExamQuestions(ctx, examID, ids)
}

type stubLocker struct {
	err error
}

func (l stubLocker) Acquire(context.Context, string) (func(), error) {
	if l.err != nil {
		return nil, l.err
	}
	return func() {}, nil
}
