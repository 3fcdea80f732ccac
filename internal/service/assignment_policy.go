package service

import (
	"examhub_backend/internal/model"
	"time"
)

// ResolveAssignmentStatus 根据发布状态与开始时间计算分配状态，不会返回 completed
func ResolveAssignmentStatus(published bool, startDate *time.Time, now time.Time) model.AssignmentStatus {
	if !published {
		return model.AssignmentPending
	}
	if startDate != nil && startDate.After(now) {
		return model.AssignmentScheduled
	}
	return model.AssignmentAvailable
}
