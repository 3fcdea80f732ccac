package controller

import (
	"examhub_backend/internal/service"
	"examhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CandidateController struct {
	AssignmentService *service.AssignmentService
}

func NewCandidateController(assignmentService *service.AssignmentService) *CandidateController {
	return &CandidateController{AssignmentService: assignmentService}
}

// @Summary 我的考试
// @Tags 学员
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/candidate/exams [get]
func (c *CandidateController) MyExams(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	exams, err := c.AssignmentService.CandidateExams(ctx.Request.Context(), user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, exams)
}
