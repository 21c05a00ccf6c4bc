package handlers

import (
	"errors"

	"assetdesk/internal/middleware"
	"assetdesk/internal/services"
	"assetdesk/internal/store"
	"assetdesk/pkg/logger"
	"assetdesk/pkg/pagination"
	"assetdesk/pkg/response"

	"github.com/gin-gonic/gin"
)

// orgID 当前请求的组织，由 middleware.RequireOrganization 写入
func orgID(c *gin.Context) string {
	return c.GetString(middleware.OrganizationIDKey)
}

// handleError 将服务层错误映射为响应码
func handleError(c *gin.Context, err error, action string) {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		response.BadRequest(c, ve.Error())
	case errors.Is(err, services.ErrCapacityExceeded):
		response.Conflict(c, err.Error())
	case errors.Is(err, store.ErrConflict):
		response.Conflict(c, "数据已被其他请求修改，请刷新后重试")
	case errors.Is(err, services.ErrNotFound):
		response.NotFound(c, "记录不存在")
	default:
		logger.GetLogger().WithError(err).WithField("path", c.Request.URL.Path).Errorf("%s失败", action)
		_ = c.Error(err)
		response.ServerError(c, action+"失败")
	}
}

// inScope 记录存在且属于其他组织时返回 404。记录不存在时放行，由服务层按静默处理
func inScope(c *gin.Context, err error, owner func() string) bool {
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return true
		}
		handleError(c, err, "查询")
		return false
	}
	if owner() != orgID(c) {
		response.NotFound(c, "记录不存在")
		return false
	}
	return true
}

// bindJSON 绑定请求体，失败时写入 400
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return false
	}
	return true
}

// page 对完整列表分页返回
func page[T any](c *gin.Context, items []T) {
	data, info := pagination.Slice(items, pagination.ParsePageParams(c))
	response.SuccessWithPage(c, data, info)
}
