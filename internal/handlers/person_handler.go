package handlers

import (
	"assetdesk/internal/models"
	"assetdesk/internal/services"
	"assetdesk/pkg/response"

	"github.com/gin-gonic/gin"
)

type PersonHandler struct {
	service *services.PersonService
	costs   *services.CostService
}

func NewPersonHandler(service *services.PersonService, costs *services.CostService) *PersonHandler {
	return &PersonHandler{
		service: service,
		costs:   costs,
	}
}

// List 人员列表，支持 search 关键字
func (h *PersonHandler) List(c *gin.Context) {
	people, err := h.service.Search(c.Request.Context(), orgID(c), c.Query("search"))
	if err != nil {
		handleError(c, err, "查询人员")
		return
	}
	page(c, people)
}

// GetByID 人员详情，包含上下级、许可证、资产和成本
func (h *PersonHandler) GetByID(c *gin.Context) {
	detail, err := h.service.GetDetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err, "查询人员")
		return
	}
	if detail.OrganizationID != orgID(c) {
		response.NotFound(c, "记录不存在")
		return
	}
	response.Success(c, detail)
}

// Create 创建人员
func (h *PersonHandler) Create(c *gin.Context) {
	var req models.CreatePersonRequest
	if !bindJSON(c, &req) {
		return
	}
	req.OrganizationID = orgID(c)

	person, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		handleError(c, err, "创建人员")
		return
	}
	response.SuccessWithMessage(c, "创建成功", person)
}

// Update 更新人员
func (h *PersonHandler) Update(c *gin.Context) {
	id := c.Param("id")
	var req models.UpdatePersonRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.service.Update(c.Request.Context(), id, req); err != nil {
		handleError(c, err, "更新人员")
		return
	}
	response.SuccessWithMessage(c, "更新成功", nil)
}

// Delete 删除人员并解除其所有分配
func (h *PersonHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		handleError(c, err, "删除人员")
		return
	}
	response.SuccessWithMessage(c, "删除成功", nil)
}

// Cost 人员成本明细
func (h *PersonHandler) Cost(c *gin.Context) {
	id := c.Param("id")
	p, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		handleError(c, err, "查询人员")
		return
	}
	if p.OrganizationID != orgID(c) {
		response.NotFound(c, "记录不存在")
		return
	}

	breakdown, err := h.costs.Breakdown(c.Request.Context(), id)
	if err != nil {
		handleError(c, err, "计算成本")
		return
	}
	response.Success(c, breakdown)
}
