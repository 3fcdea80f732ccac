package service

import (
	"context"
	"examhub_backend/pkg/logger"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ScheduleService 定时刷新开始时间已到的试卷，使 scheduled 分配变为 available
type ScheduleService struct {
	Exams    ExamStore
	Sync     *AssignmentSynchronizer
	Now      func() time.Time
	mu       sync.Mutex
	interval chan time.Duration
}

func NewScheduleService(exams ExamStore, sync *AssignmentSynchronizer) *ScheduleService {
	return &ScheduleService{
		Exams:    exams,
		Sync:     sync,
		Now:      time.Now,
		interval: make(chan time.Duration, 1),
	}
}

// ProcessElapsedStarts 返回成功同步的试卷数
func (s *ScheduleService) ProcessElapsedStarts(ctx context.Context) (int, error) {
	exams, err := s.Exams.ListPublishedExamsStartingBefore(ctx, s.Now())
	if err != nil {
		return 0, err
	}
	synced := 0
	for i := range exams {
		res := s.Sync.SyncExam(ctx, &exams[i])
		if res.Outcome != OutcomeSuccess {
			logger.Log.Warn("scheduled assignment sync did not succeed",
				zap.String("exam_id", exams[i].ID),
				zap.String("outcome", string(res.Outcome)),
				zap.String("message", res.Message),
			)
			continue
		}
		synced++
	}
	return synced, nil
}

// SetInterval 修改后台轮询间隔，配置热更新时调用
func (s *ScheduleService) SetInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-s.interval:
	default:
	}
	s.interval <- d
}

// Run 阻塞直到 ctx 结束
func (s *ScheduleService) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case d := <-s.interval:
			ticker.Reset(d)
			logger.Log.Info("scheduler interval updated", zap.Duration("interval", d))
		case <-ticker.C:
			n, err := s.ProcessElapsedStarts(ctx)
			if err != nil {
				logger.Log.Error("scheduled start processing error", zap.Error(err))
				continue
			}
			if n > 0 {
				logger.Log.Info("refreshed assignments for started exams", zap.Int("exams", n))
			}
		}
	}
}
