package service

import (
	"context"
	"errors"
	"examhub_backend/internal/model"
	"examhub_backend/internal/util"
	"examhub_backend/pkg/logger"
	"examhub_backend/pkg/monitoring"
	"examhub_backend/pkg/tracing"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const msgNoCandidates = "No candidates are enrolled in this course"

type SyncRequest struct {
	ExamID    string
	CourseID  string
	Published bool
	StartDate *time.Time
}

// SyncResult 一次同步的结果与统计。Skipped 为保持 completed 未改写的人数
type SyncResult struct {
	Result
	Status    model.AssignmentStatus `json:"status,omitempty"`
	Enrolled  int                    `json:"enrolled"`
	Inserted  int                    `json:"inserted"`
	Updated   int                    `json:"updated"`
	Unchanged int                    `json:"unchanged"`
	Skipped   int                    `json:"skipped"`
}

// AssignmentSynchronizer 使某场考试的分配记录与课程报名及考试状态保持一致
type AssignmentSynchronizer struct {
	Assignments AssignmentStore
	Enrollments EnrollmentGateway
	Locker      SyncLocker
	Notifier    AssignmentNotifier
	Now         func() time.Time
}

func NewAssignmentSynchronizer(assignments AssignmentStore, enrollments EnrollmentGateway, locker SyncLocker, notifier AssignmentNotifier) *AssignmentSynchronizer {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &AssignmentSynchronizer{
		Assignments: assignments,
		Enrollments: enrollments,
		Locker:      locker,
		Notifier:    notifier,
		Now:         time.Now,
	}
}

func (s *AssignmentSynchronizer) SyncExam(ctx context.Context, exam *model.Exam) SyncResult {
	return s.Sync(ctx, SyncRequest{
		ExamID:    exam.ID,
		CourseID:  exam.CourseID,
		Published: exam.IsPublished(),
		StartDate: exam.StartDate,
	})
}

// Sync 不返回 error，网关错误转换为 failure 结果。重复调用是幂等的
func (s *AssignmentSynchronizer) Sync(ctx context.Context, req SyncRequest) (res SyncResult) {
	started := time.Now()
	ctx, span := tracing.Tracer.Start(ctx, "assignment.sync", trace.WithAttributes(
		attribute.String("exam.id", req.ExamID),
		attribute.String("course.id", req.CourseID),
		attribute.Bool("exam.published", req.Published),
	))
	log := logger.Log.With(zap.String("exam_id", req.ExamID), zap.String("course_id", req.CourseID))

	defer func() {
		span.SetAttributes(
			attribute.String("sync.outcome", string(res.Outcome)),
			attribute.Int("sync.inserted", res.Inserted),
			attribute.Int("sync.updated", res.Updated),
		)
		if res.Outcome == OutcomeFailure {
			span.SetStatus(codes.Error, res.Message)
		}
		span.End()
		monitoring.ObserveSync(string(res.Outcome), time.Since(started), res.Inserted, res.Updated)
	}()
	defer func() {
		if r := recover(); r != nil {
			log.Error("assignment sync panicked", zap.Any("panic", r))
			res = SyncResult{Result: Fail("Assignment sync failed unexpectedly", fmt.Errorf("panic: %v", r))}
		}
	}()

	if s.Locker != nil {
		release, err := s.Locker.Acquire(ctx, req.ExamID)
		switch {
		case err == nil:
			defer release()
		case errors.Is(err, util.ErrSyncBusy):
			return SyncResult{Result: Warn("Another assignment sync for this exam is still running, please retry shortly", err)}
		case ctx.Err() != nil:
			return SyncResult{Result: Fail("Assignment sync was cancelled", err)}
		default:
			// 唯一索引兜底，锁后端不可用时继续同步
			log.Warn("sync lock unavailable, continuing without lock", zap.Error(err))
		}
	}

	enrolled, err := s.Enrollments.GetEnrolledCandidateIDs(ctx, req.CourseID)
	if err != nil {
		log.Error("failed to load course enrollments", zap.Error(err))
		return SyncResult{Result: Fail("Failed to load course enrollments", err)}
	}
	enrolled = uniqueIDs(enrolled)
	res.Enrolled = len(enrolled)
	if len(enrolled) == 0 {
		res.Result = OK(msgNoCandidates)
		return res
	}

	now := s.now()
	target := ResolveAssignmentStatus(req.Published, req.StartDate, now)
	res.Status = target

	existing, err := s.Assignments.GetAssignments(ctx, req.ExamID)
	if err != nil {
		log.Error("failed to load exam assignments", zap.Error(err))
		return SyncResult{Result: Fail("Failed to load existing assignments", err), Enrolled: res.Enrolled, Status: target}
	}
	current := make(map[string]model.AssignmentStatus, len(existing))
	for _, a := range existing {
		current[a.CandidateID] = a.Status
	}

	var fresh []model.ExamCandidateAssignment
	var stale []string
	for _, id := range enrolled {
		st, ok := current[id]
		switch {
		case !ok:
			fresh = append(fresh, model.ExamCandidateAssignment{
				ExamID:      req.ExamID,
				CandidateID: id,
				Status:      target,
				AssignedAt:  &now,
			})
		case st.IsTerminal():
			res.Skipped++
		case st == target:
			res.Unchanged++
		default:
			stale = append(stale, id)
		}
	}

	if len(fresh) > 0 {
		n, err := s.Assignments.InsertAssignments(ctx, fresh)
		if err != nil {
			log.Error("failed to insert assignments", zap.Int("count", len(fresh)), zap.Error(err))
			res.Result = Fail("Failed to create exam assignments", err)
			return res
		}
		res.Inserted = n
		// 并发同步已写入的记录
		res.Unchanged += len(fresh) - n
	}

	if len(stale) > 0 {
		n, err := s.Assignments.UpdateAssignmentStatus(ctx, req.ExamID, stale, target)
		if err != nil {
			log.Error("failed to update assignments", zap.Int("count", len(stale)), zap.Error(err))
			if res.Inserted > 0 {
				res.Result = Warn(fmt.Sprintf("Assigned %d new candidates but failed to update %d existing assignments", res.Inserted, len(stale)), err)
				s.notify(ctx, log, req, res)
			} else {
				res.Result = Fail("Failed to update exam assignments", err)
			}
			return res
		}
		res.Updated = n
		// 期间被标记为 completed 的记录
		res.Skipped += len(stale) - n
	}

	s.notify(ctx, log, req, res)
	res.Result = OK(syncSummary(res))
	return res
}

func (s *AssignmentSynchronizer) notify(ctx context.Context, log *zap.Logger, req SyncRequest, res SyncResult) {
	if s.Notifier == nil || res.Inserted+res.Updated == 0 {
		return
	}
	event := AssignmentEvent{
		ExamID:     req.ExamID,
		CourseID:   req.CourseID,
		Status:     res.Status,
		Inserted:   res.Inserted,
		Updated:    res.Updated,
		OccurredAt: s.now(),
	}
	if err := s.Notifier.Notify(ctx, event); err != nil {
		log.Warn("failed to publish assignment event", zap.Error(err))
	}
}

func (s *AssignmentSynchronizer) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func syncSummary(res SyncResult) string {
	if res.Inserted == 0 && res.Updated == 0 {
		return "Assignments are already up to date"
	}
	msg := fmt.Sprintf("Assignments synchronized: %d created, %d updated", res.Inserted, res.Updated)
	if res.Skipped > 0 {
		msg += fmt.Sprintf(", %d completed left unchanged", res.Skipped)
	}
	return msg
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
