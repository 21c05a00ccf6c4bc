package middleware

import (
	"errors"

	"assetdesk/internal/services"
	"assetdesk/pkg/response"

	"github.com/gin-gonic/gin"
)

// OrganizationIDKey 上下文中的组织ID
const OrganizationIDKey = "organization_id"

// RequireOrganization 校验路径中的 org_id 存在，写入上下文，并把后续写操作限定在该组织内
func RequireOrganization(orgs *services.OrganizationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID := c.Param("org_id")
		if _, err := orgs.GetByID(c.Request.Context(), orgID); err != nil {
			if errors.Is(err, services.ErrNotFound) {
				response.NotFound(c, "组织不存在")
			} else {
				response.ServerError(c, "查询组织失败")
			}
			c.Abort()
			return
		}

		c.Set(OrganizationIDKey, orgID)
		c.Request = c.Request.WithContext(services.WithOrganization(c.Request.Context(), orgID))
		c.Next()
	}
}
