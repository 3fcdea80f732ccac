package memory

import (
	"examhub_backend/internal/model"
)

// AddUser 写入用户，ID 为空时自动生成
func (s *Store) AddUser(u model.User) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == "" {
		u.ID = model.GenerateUUID()
	}
	if u.Role == "" {
		u.Role = model.Candidate
	}
	s.users[u.ID] = u
	return u.ID
}

func (s *Store) AddQuestion(q model.Question) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if q.ID == "" {
		q.ID = model.GenerateUUID()
	}
	s.questions = append(s.questions, q)
	return q.ID
}

// SetAssignmentStatus 直接改写状态，模拟学员提交等同步之外的流程
func (s *Store) SetAssignmentStatus(examID, candidateID string, status model.AssignmentStatus) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := assignmentKey{examID, candidateID}
	row, ok := s.assignments[k]
	if !ok {
		return false
	}
	row.Status = status
	s.assignments[k] = row
	return true
}

// AssignmentCount 某场考试的分配记录数
func (s *Store) AssignmentCount(examID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for k := range s.assignments {
		if k.examID == examID {
			n++
		}
	}
	return n
}
