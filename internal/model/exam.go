package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

type ExamStatus string

const (
	ExamDraft     ExamStatus = "draft"
	ExamPublished ExamStatus = "published"
	ExamArchived  ExamStatus = "archived"
)

func (s ExamStatus) Valid() bool {
	switch s {
	case ExamDraft, ExamPublished, ExamArchived:
		return true
	}
	return false
}

// PoolSubject 题目池中某个科目需要抽取的题数
type PoolSubject struct {
	SubjectID string `json:"subjectId"`
	Count     int    `json:"count"`
}

type QuestionPool struct {
	Subjects       []PoolSubject `json:"subjects"`
	TotalQuestions *int          `json:"totalQuestions,omitempty"`
}

// Target 返回题目池最终要落地的题数：设置了总题数时以总题数为准，否则为各科目题数之和
func (p QuestionPool) Target() int {
	if p.TotalQuestions != nil && *p.TotalQuestions > 0 {
		return *p.TotalQuestions
	}
	total := 0
	for _, s := range p.Subjects {
		total += s.Count
	}
	return total
}

// swagger:model Exam
type Exam struct {
	UUIDBase
	Title            string         `gorm:"size:255;not null" json:"title"`
	Description      string         `gorm:"type:text" json:"description"`
	CourseID         string         `gorm:"index;type:varchar(36);not null" json:"courseId"`
	InstructorID     string         `gorm:"index;type:varchar(36)" json:"instructorId"`
	TimeLimit        int            `gorm:"default:0" json:"timeLimit"` // Minutes
	PassingScore     int            `gorm:"default:0" json:"passingScore"`
	ShuffleQuestions bool           `gorm:"default:false" json:"shuffleQuestions"`
	Status           ExamStatus     `gorm:"size:20;default:'draft';index" json:"status"`
	StartDate        *time.Time     `json:"startDate,omitempty"`
	EndDate          *time.Time     `json:"endDate,omitempty"`
	UseQuestionPool  bool           `gorm:"default:false" json:"useQuestionPool"`
	QuestionPool     datatypes.JSON `json:"questionPool,omitempty"`
}

func (Exam) TableName() string {
	return "exams"
}

func (e *Exam) IsPublished() bool {
	return e.Status == ExamPublished
}

// Pool 解析题目池配置，未使用题目池或未配置时返回 nil
func (e *Exam) Pool() (*QuestionPool, error) {
	if !e.UseQuestionPool || len(e.QuestionPool) == 0 {
		return nil, nil
	}
	var p QuestionPool
	if err := json.Unmarshal(e.QuestionPool, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (e *Exam) SetPool(p *QuestionPool) error {
	if p == nil {
		e.QuestionPool = nil
		return nil
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	e.QuestionPool = datatypes.JSON(raw)
	return nil
}

// ExamQuestion 试卷与题目的有序关联，每次更新试卷时整体替换
type ExamQuestion struct {
	UUIDBase
	ExamID      string `gorm:"uniqueIndex:idx_exam_question_order;type:varchar(36);not null" json:"examId"`
	QuestionID  string `gorm:"index;type:varchar(36);not null" json:"questionId"`
	OrderNumber int    `gorm:"uniqueIndex:idx_exam_question_order;not null" json:"orderNumber"`
}

func (ExamQuestion) TableName() string {
	return "exam_questions"
}
