package service_test

import (
	"context"
	"examhub_backend/internal/model"
	"examhub_backend/internal/service"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessElapsedStarts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.enroll(t, "course-1", 3)
	in := validInput()
	in.Status = model.ExamPublished
	in.StartDate = timePtr(baseTime.Add(time.Hour))
	id, res := newExamService(f).Create(ctx, owner, in)
	require.Equal(t, service.OutcomeSuccess, res.Outcome)

	sched := service.NewScheduleService(f.store, f.sync)
	sched.Now = f.clock

	n, err := sched.ProcessElapsedStarts(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "start date not reached yet")

	f.advance(time.Hour)
	n, err = sched.ProcessElapsedStarts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	for _, st := range f.statuses(t, id) {
		assert.Equal(t, model.AssignmentAvailable, st)
	}

	// 已无 scheduled 记录
	n, err = sched.ProcessElapsedStarts(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestScheduleRunStopsWithContext(t *testing.T) {
	f := newFixture(t)
	f.enroll(t, "course-1", 1)
	in := validInput()
	in.Status = model.ExamPublished
	in.StartDate = timePtr(baseTime.Add(time.Minute))
	id, _ := newExamService(f).Create(context.Background(), owner, in)
	f.advance(time.Hour)

	sched := service.NewScheduleService(f.store, f.sync)
	sched.Now = f.clock
	sched.SetInterval(5 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sched.Run(ctx, time.Hour)
		close(done)
	}()

	require.Eventually(t, func() bool {
		for _, st := range f.statuses(t, id) {
			if st != model.AssignmentAvailable {
				return false
			}
		}
		return true
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}
