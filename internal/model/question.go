package model

// Question 题库中的题目（这里只用于题目池抽题，题库的增删改不在本服务内）
type Question struct {
	UUIDBase
	SubjectID string `gorm:"index;type:varchar(36);not null" json:"subjectId"`
	Text      string `gorm:"type:text;not null" json:"text"`
	Type      string `gorm:"size:50" json:"type"`
}

func (Question) TableName() string {
	return "questions"
}
