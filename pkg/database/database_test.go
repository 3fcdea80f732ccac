package database

import (
	"context"
	"examhub_backend/internal/config"
	"examhub_backend/internal/util"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestDSN(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Host:      "db",
		Port:      3306,
		User:      "exam",
		Password:  "secret",
		DBName:    "examhub",
		Charset:   "utf8mb4",
		ParseTime: true,
		SSLMode:   "disable",
		TimeZone:  "UTC",
	}
	assert.Equal(t, "exam:secret@tcp(db:3306)/examhub?charset=utf8mb4&parseTime=true&loc=Local", MySQLDSN(cfg))

	cfg.Port = 5432
	assert.Equal(t, "host=db port=5432 user=exam password=secret dbname=examhub sslmode=disable TimeZone=UTC", PostgresDSN(cfg))
}

func TestInitDBRejectsUnknownDriver(t *testing.T) {
	_, err := InitDB(&config.DatabaseConfig{Driver: util.DriverMemory})
	assert.Error(t, err)
}

func TestGormLogLevel(t *testing.T) {
	assert.Equal(t, logger.Info, gormLogLevel("info"))
	assert.Equal(t, logger.Silent, gormLogLevel("silent"))
	assert.Equal(t, logger.Warn, gormLogLevel(""))
}

func TestRedisOptions(t *testing.T) {
	opts := RedisOptions(&config.RedisConfig{Host: "cache", Port: 6380, Password: "pw", DB: 2})
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, "pw", opts.Password)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, redisPingTimeout, opts.DialTimeout)
}

func TestInitRedisUnreachable(t *testing.T) {
	_, err := InitRedis(context.Background(), &config.RedisConfig{Host: "127.0.0.1", Port: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "127.0.0.1:1")
}
