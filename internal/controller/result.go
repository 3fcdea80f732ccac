package controller

import (
	"errors"
	"examhub_backend/internal/service"
	"examhub_backend/internal/util"
	"examhub_backend/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func actorFrom(ctx *gin.Context) (service.Actor, bool) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		return service.Actor{}, false
	}
	return service.Actor{UserID: claims.UserID, Role: claims.Role}, true
}

// writeResult 按三态结果输出：success 用 status，warning 返回 200，failure 按错误类型映射状态码
func writeResult(ctx *gin.Context, res service.Result, status int, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["outcome"] = res.Outcome

	var verr *service.ValidationError
	switch {
	case res.Outcome == service.OutcomeSuccess:
		ctx.JSON(status, util.Response{Code: status, Message: res.Message, Data: data})
	case res.Outcome == service.OutcomeWarning:
		util.SuccessWithMessage(ctx, res.Message, data)
	case errors.As(res.Err, &verr):
		data["fields"] = verr.Fields
		util.ErrorWithData(ctx, http.StatusBadRequest, res.Message, data)
	case errors.Is(res.Err, util.ErrInvalidStatus), errors.Is(res.Err, util.ErrNoMatchingUsers):
		util.ErrorWithData(ctx, http.StatusBadRequest, res.Message, data)
	case errors.Is(res.Err, util.ErrExamNotFound):
		util.ErrorWithData(ctx, http.StatusNotFound, res.Message, data)
	case errors.Is(res.Err, util.ErrPermissionDenied):
		util.ErrorWithData(ctx, http.StatusForbidden, res.Message, data)
	default:
		logger.Log.Error("operation failed", zap.String("path", ctx.FullPath()), zap.String("message", res.Message), zap.Error(res.Err))
		util.ErrorWithData(ctx, http.StatusInternalServerError, res.Message, data)
	}
}

// writeError 查询类接口的错误输出
func writeError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrExamNotFound):
		util.Error(ctx, http.StatusNotFound, err.Error())
	case errors.Is(err, util.ErrPermissionDenied):
		util.Forbidden(ctx)
	default:
		util.LogInternalError(ctx, err)
	}
}
