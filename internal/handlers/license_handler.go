package handlers

import (
	"assetdesk/internal/models"
	"assetdesk/internal/services"
	"assetdesk/pkg/response"

	"github.com/gin-gonic/gin"
)

type LicenseHandler struct {
	service *services.LicenseService
	monitor *services.LicenseExpiryMonitor
}

// NewLicenseHandler monitor 可以为 nil，此时到期报告总是实时计算
func NewLicenseHandler(service *services.LicenseService, monitor *services.LicenseExpiryMonitor) *LicenseHandler {
	return &LicenseHandler{
		service: service,
		monitor: monitor,
	}
}

// List 许可证列表
func (h *LicenseHandler) List(c *gin.Context) {
	licenses, err := h.service.List(c.Request.Context(), orgID(c))
	if err != nil {
		handleError(c, err, "查询许可证")
		return
	}
	page(c, licenses)
}

// GetByID 许可证详情
func (h *LicenseHandler) GetByID(c *gin.Context) {
	license, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err, "查询许可证")
		return
	}
	if license.OrganizationID != orgID(c) {
		response.NotFound(c, "记录不存在")
		return
	}
	response.Success(c, license)
}

// Create 创建许可证
func (h *LicenseHandler) Create(c *gin.Context) {
	var req models.CreateLicenseRequest
	if !bindJSON(c, &req) {
		return
	}
	req.OrganizationID = orgID(c)

	license, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		handleError(c, err, "创建许可证")
		return
	}
	response.SuccessWithMessage(c, "创建成功", license)
}

// Update 更新许可证
func (h *LicenseHandler) Update(c *gin.Context) {
	id := c.Param("id")
	var req models.UpdateLicenseRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.service.Update(c.Request.Context(), id, req); err != nil {
		handleError(c, err, "更新许可证")
		return
	}
	response.SuccessWithMessage(c, "更新成功", nil)
}

// Delete 删除许可证
func (h *LicenseHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		handleError(c, err, "删除许可证")
		return
	}
	response.SuccessWithMessage(c, "删除成功", nil)
}

// Assign 分配席位
func (h *LicenseHandler) Assign(c *gin.Context) {
	id := c.Param("id")
	var req models.AssignLicenseRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.service.AssignToUser(c.Request.Context(), id, req.PersonID); err != nil {
		handleError(c, err, "分配许可证")
		return
	}
	h.respondLicense(c, id, "分配成功")
}

// Unassign 回收席位
func (h *LicenseHandler) Unassign(c *gin.Context) {
	id := c.Param("id")
	var req models.AssignLicenseRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.service.UnassignFromUser(c.Request.Context(), id, req.PersonID); err != nil {
		handleError(c, err, "回收许可证")
		return
	}
	h.respondLicense(c, id, "回收成功")
}

// Reconcile 按目标持有人集合整体调整
func (h *LicenseHandler) Reconcile(c *gin.Context) {
	id := c.Param("id")
	var req models.ReconcileLicenseRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.service.Reconcile(c.Request.Context(), id, req.PersonIDs); err != nil {
		handleError(c, err, "调整许可证分配")
		return
	}
	h.respondLicense(c, id, "调整成功")
}

// respondLicense 返回变更后的许可证；许可证不存在时只返回消息
func (h *LicenseHandler) respondLicense(c *gin.Context, id, message string) {
	license, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		response.SuccessWithMessage(c, message, nil)
		return
	}
	response.SuccessWithMessage(c, message, license)
}

// Summary 许可证汇总
func (h *LicenseHandler) Summary(c *gin.Context) {
	summary, err := h.service.Summary(c.Request.Context(), orgID(c))
	if err != nil {
		handleError(c, err, "查询许可证汇总")
		return
	}
	response.Success(c, summary)
}

// ExpiryReport 到期报告。优先返回最近一次巡检结果，refresh=true 时实时计算
func (h *LicenseHandler) ExpiryReport(c *gin.Context) {
	if h.monitor != nil && c.Query("refresh") != "true" {
		if report, ok := h.monitor.LatestReport(orgID(c)); ok {
			response.Success(c, report)
			return
		}
	}

	report, err := h.service.ExpiryReport(c.Request.Context(), orgID(c))
	if err != nil {
		handleError(c, err, "生成到期报告")
		return
	}
	response.Success(c, report)
}
