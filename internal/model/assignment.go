package model

import "time"

type AssignmentStatus string

const (
	AssignmentPending   AssignmentStatus = "pending"
	AssignmentScheduled AssignmentStatus = "scheduled"
	AssignmentAvailable AssignmentStatus = "available"
	AssignmentCompleted AssignmentStatus = "completed"
)

// IsTerminal completed 之后同步流程不得再改写状态
func (s AssignmentStatus) IsTerminal() bool {
	return s == AssignmentCompleted
}

// ExamCandidateAssignment 每个 (exam_id, candidate_id) 至多一条，由唯一索引保证
type ExamCandidateAssignment struct {
	UUIDBase
	ExamID      string           `gorm:"uniqueIndex:idx_exam_candidate;type:varchar(36);not null" json:"examId"`
	CandidateID string           `gorm:"uniqueIndex:idx_exam_candidate;index;type:varchar(36);not null" json:"candidateId"`
	Status      AssignmentStatus `gorm:"size:20;not null;index" json:"status"`
	AssignedAt  *time.Time       `json:"assignedAt,omitempty"`
}

func (ExamCandidateAssignment) TableName() string {
	return "exam_candidate_assignments"
}
