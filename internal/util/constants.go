package util

// 数据库驱动
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// ContextUserKey gin 上下文中保存 JWT claims 的键
const ContextUserKey = "user"
