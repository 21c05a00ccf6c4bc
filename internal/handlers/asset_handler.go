package handlers

import (
	"assetdesk/internal/models"
	"assetdesk/internal/services"
	"assetdesk/pkg/response"

	"github.com/gin-gonic/gin"
)

type AssetHandler struct {
	service *services.AssetService
}

func NewAssetHandler(service *services.AssetService) *AssetHandler {
	return &AssetHandler{
		service: service,
	}
}

// List 资产列表，支持 status、type、search 过滤
func (h *AssetHandler) List(c *gin.Context) {
	var filter models.AssetFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "参数错误: "+err.Error())
		return
	}

	assets, err := h.service.ListFiltered(c.Request.Context(), orgID(c), filter)
	if err != nil {
		handleError(c, err, "查询资产")
		return
	}
	page(c, assets)
}

// GetByID 资产详情
func (h *AssetHandler) GetByID(c *gin.Context) {
	asset, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err, "查询资产")
		return
	}
	if asset.OrganizationID != orgID(c) {
		response.NotFound(c, "记录不存在")
		return
	}
	response.Success(c, asset)
}

// Create 创建资产
func (h *AssetHandler) Create(c *gin.Context) {
	var req models.CreateAssetRequest
	if !bindJSON(c, &req) {
		return
	}
	req.OrganizationID = orgID(c)

	asset, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		handleError(c, err, "创建资产")
		return
	}
	response.SuccessWithMessage(c, "创建成功", asset)
}

// Update 更新资产
func (h *AssetHandler) Update(c *gin.Context) {
	id := c.Param("id")
	var req models.UpdateAssetRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.service.Update(c.Request.Context(), id, req); err != nil {
		handleError(c, err, "更新资产")
		return
	}
	response.SuccessWithMessage(c, "更新成功", nil)
}

// Delete 删除资产
func (h *AssetHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		handleError(c, err, "删除资产")
		return
	}
	response.SuccessWithMessage(c, "删除成功", nil)
}

// Assign 分配资产
func (h *AssetHandler) Assign(c *gin.Context) {
	id := c.Param("id")
	var req models.AssignAssetRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.service.Assign(c.Request.Context(), id, req.PersonID); err != nil {
		handleError(c, err, "分配资产")
		return
	}
	response.SuccessWithMessage(c, "分配成功", nil)
}

// Unassign 收回资产
func (h *AssetHandler) Unassign(c *gin.Context) {
	id := c.Param("id")
	if err := h.service.Unassign(c.Request.Context(), id); err != nil {
		handleError(c, err, "收回资产")
		return
	}
	response.SuccessWithMessage(c, "收回成功", nil)
}

// Inventory 可用库存汇总
func (h *AssetHandler) Inventory(c *gin.Context) {
	summary, err := h.service.InventorySummary(c.Request.Context(), orgID(c))
	if err != nil {
		handleError(c, err, "查询库存")
		return
	}
	response.Success(c, summary)
}
