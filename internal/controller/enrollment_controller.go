package controller

import (
	"examhub_backend/internal/model"
	"examhub_backend/internal/service"
	"examhub_backend/internal/util"
	"net/http"

	"github.com/gin-gonic/gin"
)

type EnrollmentController struct {
	EnrollmentService *service.EnrollmentService
}

func NewEnrollmentController(enrollmentService *service.EnrollmentService) *EnrollmentController {
	return &EnrollmentController{EnrollmentService: enrollmentService}
}

type EnrollRequest struct {
	Emails []string `json:"emails" binding:"required"`
}

// @Summary 按邮箱报名学员
// @Tags 课程报名
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param courseId path string true "课程ID"
// @Param body body EnrollRequest true "学员邮箱"
// @Success 200 {object} util.Response
// @Router /api/instructor/courses/{courseId}/enrollments [post]
func (c *EnrollmentController) Enroll(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return
	}

	var req EnrollRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	res := c.EnrollmentService.EnrollParticipants(ctx.Request.Context(), actor, ctx.Param("courseId"), req.Emails)
	writeResult(ctx, res.Result, http.StatusOK, gin.H{
		"enrolled":        res.Enrolled,
		"alreadyEnrolled": res.AlreadyEnrolled,
		"unmatched":       res.Unmatched,
		"examsSynced":     res.ExamsSynced,
	})
}

// @Summary 课程报名列表
// @Tags 课程报名
// @Security BearerAuth
// @Produce json
// @Param courseId path string true "课程ID"
// @Success 200 {object} util.Response
// @Router /api/instructor/courses/{courseId}/enrollments [get]
func (c *EnrollmentController) ListEnrollments(ctx *gin.Context) {
	rows, err := c.EnrollmentService.EnrolledCandidates(ctx.Request.Context(), ctx.Param("courseId"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	if rows == nil {
		rows = []model.CourseEnrollment{}
	}
	util.Success(ctx, rows)
}
