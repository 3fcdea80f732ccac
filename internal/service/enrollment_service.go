package service

import (
	"context"
	"examhub_backend/internal/model"
	"examhub_backend/internal/util"
	"examhub_backend/pkg/logger"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

type EnrollResult struct {
	Result
	Enrolled        int      `json:"enrolled"`
	AlreadyEnrolled int      `json:"alreadyEnrolled"`
	Unmatched       []string `json:"unmatched,omitempty"`
	ExamsSynced     int      `json:"examsSynced"`
}

// EnrollmentService 按邮箱报名学员，报名后刷新课程下所有试卷的分配
type EnrollmentService struct {
	Enrollments EnrollmentGateway
	Users       UserDirectory
	Exams       ExamStore
	Sync        *AssignmentSynchronizer
}

func NewEnrollmentService(enrollments EnrollmentGateway, users UserDirectory, exams ExamStore, sync *AssignmentSynchronizer) *EnrollmentService {
	return &EnrollmentService{Enrollments: enrollments, Users: users, Exams: exams, Sync: sync}
}

func (s *EnrollmentService) EnrollParticipants(ctx context.Context, actor Actor, courseID string, emails []string) EnrollResult {
	courseID = strings.TrimSpace(courseID)
	if courseID == "" {
		err := &ValidationError{Fields: map[string]string{"courseId": "courseId is required"}}
		return EnrollResult{Result: Fail(err.Error(), err)}
	}
	emails = normalizeEmails(emails)
	if len(emails) == 0 {
		err := &ValidationError{Fields: map[string]string{"emails": "emails is required"}}
		return EnrollResult{Result: Fail(err.Error(), err)}
	}

	log := logger.Log.With(zap.String("course_id", courseID))

	users, err := s.Users.FindUsersByEmails(ctx, emails)
	if err != nil {
		log.Error("failed to look up users by email", zap.Error(err))
		return EnrollResult{Result: Fail("Failed to look up users", err)}
	}
	if len(users) == 0 {
		return EnrollResult{Result: Fail(util.ErrNoMatchingUsers.Error(), util.ErrNoMatchingUsers), Unmatched: emails}
	}

	found := make(map[string]struct{}, len(users))
	ids := make([]string, 0, len(users))
	for _, u := range users {
		found[strings.ToLower(u.Email)] = struct{}{}
		ids = append(ids, u.ID)
	}
	res := EnrollResult{}
	for _, e := range emails {
		if _, ok := found[e]; !ok {
			res.Unmatched = append(res.Unmatched, e)
		}
	}

	n, err := s.Enrollments.Enroll(ctx, courseID, ids, actor.UserID)
	if err != nil {
		log.Error("failed to enroll participants", zap.Int("count", len(ids)), zap.Error(err))
		res.Result = Fail("Failed to enroll participants", err)
		return res
	}
	res.Enrolled = n
	res.AlreadyEnrolled = len(ids) - n

	msg := fmt.Sprintf("Enrolled %d participants", res.Enrolled)
	if res.AlreadyEnrolled > 0 {
		msg += fmt.Sprintf(", %d already enrolled", res.AlreadyEnrolled)
	}
	if len(res.Unmatched) > 0 {
		msg += fmt.Sprintf(", %d emails not found", len(res.Unmatched))
	}

	exams, err := s.Exams.ListExamsByCourse(ctx, courseID)
	if err != nil {
		log.Error("failed to list course exams", zap.Error(err))
		res.Result = Warn(msg+" but exam assignments could not be refreshed", err)
		return res
	}
	failed := 0
	var lastErr error
	for i := range exams {
		sync := s.Sync.SyncExam(ctx, &exams[i])
		if sync.Outcome != OutcomeSuccess {
			failed++
			lastErr = sync.Err
			continue
		}
		res.ExamsSynced++
	}
	if failed > 0 {
		res.Result = Warn(fmt.Sprintf("%s but %d exams failed to refresh assignments", msg, failed), lastErr)
		return res
	}
	res.Result = OK(msg)
	return res
}

func (s *EnrollmentService) EnrolledCandidates(ctx context.Context, courseID string) ([]model.CourseEnrollment, error) {
	return s.Enrollments.ListEnrollments(ctx, courseID)
}

func normalizeEmails(emails []string) []string {
	seen := make(map[string]struct{}, len(emails))
	out := make([]string, 0, len(emails))
	for _, e := range emails {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	return out
}
