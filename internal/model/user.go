package model

type UserRole string

const (
	Candidate  UserRole = "candidate"
	Instructor UserRole = "instructor"
	Admin      UserRole = "admin"
)

// User 只读的用户资料，供按邮箱查找报名学员使用（账号与登录由外部认证服务负责）
// swagger:model User
type User struct {
	UUIDBase
	Email       string   `gorm:"size:100;uniqueIndex;not null" json:"email"`
	DisplayName string   `gorm:"size:100" json:"displayName"`
	Role        UserRole `gorm:"size:20;default:'candidate'" json:"role"`
}

func (User) TableName() string {
	return "users"
}
