package app

import (
	"context"
	"examhub_backend/internal/config"
	"examhub_backend/internal/model"
	"examhub_backend/internal/util"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig(t *testing.T) *config.Config {
	return &config.Config{
		Server:    config.ServerConfig{Port: "0", Mode: "test"},
		Database:  config.DatabaseConfig{Driver: util.DriverMemory},
		JWT:       config.JWTConfig{Secret: "app-test-secret"},
		RateLimit: config.RateLimitConfig{MaxRequests: 1000, WindowMinutes: 1},
		Scheduler: config.SchedulerConfig{Enabled: false},
		Sync:      config.SyncConfig{LockWaitSeconds: 1},
		Log:       config.LogConfig{Level: "error", File: filepath.Join(t.TempDir(), "app.log")},
	}
}

func TestNewAppWithMemoryStorage(t *testing.T) {
	a := NewApp(memoryConfig(t))
	defer a.Close(context.Background())
	require.NotNil(t, a.Router)
	assert.Nil(t, a.DB)
	assert.Nil(t, a.Redis)

	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	a.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/candidate/exams", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	u := &model.User{Role: model.Candidate}
	u.ID = "cand-1"
	tok, err := util.GenerateJWT(u, "app-test-secret", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/instructor/courses/c1/exams", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w = httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/candidate/exams", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w = httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	a.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	a.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/unknown", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Resource not found")
}

func TestApplyConfigRunsCallbacks(t *testing.T) {
	a := &App{}
	var got []string
	a.RegisterConfigCallback(func(c *config.Config) { got = append(got, "first:"+c.Log.Level) })
	a.RegisterConfigCallback(func(c *config.Config) { got = append(got, "second:"+c.Log.Level) })

	a.ApplyConfig(&config.Config{Log: config.LogConfig{Level: "debug"}})
	assert.Equal(t, []string{"first:debug", "second:debug"}, got)
}

func TestCloseStopsBackgroundTasks(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.Scheduler = config.SchedulerConfig{Enabled: true, IntervalSeconds: 3600}
	a := NewApp(cfg)
	require.NoError(t, a.ctx.Err())

	a.Close(context.Background())
	assert.ErrorIs(t, a.ctx.Err(), context.Canceled)
}
