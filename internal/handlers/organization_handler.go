package handlers

import (
	"assetdesk/internal/models"
	"assetdesk/internal/services"
	"assetdesk/pkg/response"

	"github.com/gin-gonic/gin"
)

type OrganizationHandler struct {
	service *services.OrganizationService
}

func NewOrganizationHandler(service *services.OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{
		service: service,
	}
}

// List 组织列表
func (h *OrganizationHandler) List(c *gin.Context) {
	orgs, err := h.service.List(c.Request.Context())
	if err != nil {
		handleError(c, err, "查询组织")
		return
	}
	page(c, orgs)
}

// GetByID 组织详情
func (h *OrganizationHandler) GetByID(c *gin.Context) {
	org, err := h.service.GetByID(c.Request.Context(), c.Param("org_id"))
	if err != nil {
		handleError(c, err, "查询组织")
		return
	}
	response.Success(c, org)
}

// Create 创建组织
func (h *OrganizationHandler) Create(c *gin.Context) {
	var req models.CreateOrganizationRequest
	if !bindJSON(c, &req) {
		return
	}

	org, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		handleError(c, err, "创建组织")
		return
	}
	response.SuccessWithMessage(c, "创建成功", org)
}
