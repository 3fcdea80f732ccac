package app

import (
	"examhub_backend/internal/config"
	"examhub_backend/internal/middleware"
	"examhub_backend/internal/model"
	"examhub_backend/internal/util"
	"examhub_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	router.GET("/metrics", monitoring.PrometheusHandler())
	router.NoRoute(util.NotFound)

	// 1. 公共路由(无需登录)
	router.GET("/api/health", c.health.HealthCheck)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		// 学员接口
		a.registerCandidateRoutes(authGroup, c)

		// 教师相关接口
		a.registerInstructorRoutes(authGroup, c)
	}
}

func (a *App) registerCandidateRoutes(group *gin.RouterGroup, c *controllers) {
	candidate := group.Group("/candidate")
	{
		candidate.GET("/exams", c.candidate.MyExams)
	}
}

func (a *App) registerInstructorRoutes(group *gin.RouterGroup, c *controllers) {
	instructor := group.Group("/instructor")
	instructor.Use(middleware.RoleMiddleware(model.Instructor))
	{
		exams := instructor.Group("/exams")
		{
			exams.POST("", c.exam.CreateExam)
			exams.GET("/:id", c.exam.GetExam)
			exams.PUT("/:id", c.exam.UpdateExam)
			exams.DELETE("/:id", c.exam.DeleteExam)
			exams.POST("/:id/status", c.exam.SetExamStatus)
			exams.GET("/:id/assignments", c.exam.ListExamAssignments)
			exams.POST("/:id/sync", c.exam.SyncExam)
		}

		courses := instructor.Group("/courses/:courseId")
		{
			courses.GET("/exams", c.exam.ListCourseExams)
			courses.POST("/enrollments", c.enrollment.Enroll)
			courses.GET("/enrollments", c.enrollment.ListEnrollments)
		}
	}
}
