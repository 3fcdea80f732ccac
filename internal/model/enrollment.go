package model

// CourseEnrollment 课程报名记录，创建后不再修改
type CourseEnrollment struct {
	UUIDBase
	CourseID   string `gorm:"uniqueIndex:idx_course_user;type:varchar(36);not null" json:"courseId"`
	UserID     string `gorm:"uniqueIndex:idx_course_user;index;type:varchar(36);not null" json:"userId"`
	EnrolledBy string `gorm:"type:varchar(36)" json:"enrolledBy"`
}

func (CourseEnrollment) TableName() string {
	return "course_enrollments"
}
