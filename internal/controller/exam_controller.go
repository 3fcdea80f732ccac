package controller

import (
	"examhub_backend/internal/model"
	"examhub_backend/internal/service"
	"examhub_backend/internal/util"
	"net/http"

	"github.com/gin-gonic/gin"
)

type ExamController struct {
	ExamService       *service.ExamService
	AssignmentService *service.AssignmentService
}

func NewExamController(examService *service.ExamService, assignmentService *service.AssignmentService) *ExamController {
	return &ExamController{ExamService: examService, AssignmentService: assignmentService}
}

// @Summary 创建试卷
// @Tags 试卷管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param exam body service.ExamInput true "试卷信息"
// @Success 201 {object} util.Response
// @Router /api/instructor/exams [post]
func (c *ExamController) CreateExam(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return
	}

	var req service.ExamInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	id, res := c.ExamService.Create(ctx.Request.Context(), actor, req)
	var data gin.H
	if id != "" {
		data = gin.H{"examId": id}
	}
	writeResult(ctx, res, http.StatusCreated, data)
}

// @Summary 获取试卷详情
// @Tags 试卷管理
// @Security BearerAuth
// @Produce json
// @Param id path string true "试卷ID"
// @Success 200 {object} util.Response
// @Router /api/instructor/exams/{id} [get]
func (c *ExamController) GetExam(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return
	}
	detail, err := c.ExamService.Get(ctx.Request.Context(), actor, ctx.Param("id"))
	if err != nil {
		writeError(ctx, err)
		return
	}
	util.Success(ctx, detail)
}

// @Summary 更新试卷
// @Tags 试卷管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "试卷ID"
// @Param exam body service.ExamInput true "试卷信息"
// @Success 200 {object} util.Response
// @Router /api/instructor/exams/{id} [put]
func (c *ExamController) UpdateExam(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return
	}

	var req service.ExamInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	res := c.ExamService.Update(ctx.Request.Context(), actor, ctx.Param("id"), req)
	writeResult(ctx, res, http.StatusOK, nil)
}

// @Summary 删除试卷
// @Tags 试卷管理
// @Security BearerAuth
// @Param id path string true "试卷ID"
// @Success 200 {object} util.Response
// @Router /api/instructor/exams/{id} [delete]
func (c *ExamController) DeleteExam(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return
	}
	res := c.ExamService.Delete(ctx.Request.Context(), actor, ctx.Param("id"))
	writeResult(ctx, res, http.StatusOK, nil)
}

// @Summary 发布/归档试卷
// @Tags 试卷管理
// @Accept json
// @Security BearerAuth
// @Param id path string true "试卷ID"
// @Param body body object true "{status: draft|published|archived}"
// @Success 200 {object} util.Response
// @Router /api/instructor/exams/{id}/status [post]
func (c *ExamController) SetExamStatus(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return
	}

	var body struct {
		Status model.ExamStatus `json:"status" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	res := c.ExamService.SetStatus(ctx.Request.Context(), actor, ctx.Param("id"), body.Status)
	writeResult(ctx, res, http.StatusOK, gin.H{"status": body.Status})
}

// @Summary 课程下的试卷列表
// @Tags 试卷管理
// @Security BearerAuth
// @Produce json
// @Param courseId path string true "课程ID"
// @Success 200 {object} util.Response
// @Router /api/instructor/courses/{courseId}/exams [get]
func (c *ExamController) ListCourseExams(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return
	}
	exams, err := c.ExamService.ListByCourse(ctx.Request.Context(), actor, ctx.Param("courseId"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	if exams == nil {
		exams = []model.Exam{}
	}
	util.Success(ctx, exams)
}

// @Summary 试卷的学员分配情况
// @Tags 试卷管理
// @Security BearerAuth
// @Produce json
// @Param id path string true "试卷ID"
// @Success 200 {object} util.Response
// @Router /api/instructor/exams/{id}/assignments [get]
func (c *ExamController) ListExamAssignments(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return
	}
	rows, err := c.AssignmentService.ExamAssignments(ctx.Request.Context(), actor, ctx.Param("id"))
	if err != nil {
		writeError(ctx, err)
		return
	}
	if rows == nil {
		rows = []model.ExamCandidateAssignment{}
	}
	util.Success(ctx, rows)
}

// @Summary 手动同步学员分配
// @Tags 试卷管理
// @Security BearerAuth
// @Produce json
// @Param id path string true "试卷ID"
// @Success 200 {object} util.Response
// @Router /api/instructor/exams/{id}/sync [post]
func (c *ExamController) SyncExam(ctx *gin.Context) {
	actor, ok := actorFrom(ctx)
	if !ok {
		util.Unauthorized(ctx)
		return
	}
	res := c.AssignmentService.Resync(ctx.Request.Context(), actor, ctx.Param("id"))
	writeResult(ctx, res.Result, http.StatusOK, gin.H{
		"status":    res.Status,
		"enrolled":  res.Enrolled,
		"inserted":  res.Inserted,
		"updated":   res.Updated,
		"unchanged": res.Unchanged,
		"skipped":   res.Skipped,
	})
}
