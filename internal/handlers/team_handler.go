package handlers

import (
	"assetdesk/internal/models"
	"assetdesk/internal/services"
	"assetdesk/pkg/response"

	"github.com/gin-gonic/gin"
)

type TeamHandler struct {
	service *services.TeamService
	people  *services.PersonService
}

func NewTeamHandler(service *services.TeamService, people *services.PersonService) *TeamHandler {
	return &TeamHandler{
		service: service,
		people:  people,
	}
}

func (h *TeamHandler) scoped(c *gin.Context, id string) bool {
	t, err := h.service.GetByID(c.Request.Context(), id)
	return inScope(c, err, func() string { return t.OrganizationID })
}

// List 团队列表
func (h *TeamHandler) List(c *gin.Context) {
	teams, err := h.service.List(c.Request.Context(), orgID(c))
	if err != nil {
		handleError(c, err, "查询团队")
		return
	}
	page(c, teams)
}

// GetByID 团队详情
func (h *TeamHandler) GetByID(c *gin.Context) {
	team, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err, "查询团队")
		return
	}
	if team.OrganizationID != orgID(c) {
		response.NotFound(c, "记录不存在")
		return
	}
	response.Success(c, team)
}

// Create 创建团队
func (h *TeamHandler) Create(c *gin.Context) {
	var req models.CreateTeamRequest
	if !bindJSON(c, &req) {
		return
	}
	req.OrganizationID = orgID(c)

	team, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		handleError(c, err, "创建团队")
		return
	}
	response.SuccessWithMessage(c, "创建成功", team)
}

// Update 更新团队
func (h *TeamHandler) Update(c *gin.Context) {
	id := c.Param("id")
	var req models.UpdateTeamRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.service.Update(c.Request.Context(), id, req); err != nil {
		handleError(c, err, "更新团队")
		return
	}
	response.SuccessWithMessage(c, "更新成功", nil)
}

// Delete 删除团队，成员保留但不再归属任何团队
func (h *TeamHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		handleError(c, err, "删除团队")
		return
	}
	response.SuccessWithMessage(c, "删除成功", nil)
}

// Members 团队在职成员
func (h *TeamHandler) Members(c *gin.Context) {
	id := c.Param("id")
	team, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		handleError(c, err, "查询团队")
		return
	}
	if team.OrganizationID != orgID(c) {
		response.NotFound(c, "记录不存在")
		return
	}

	members, err := h.service.ListMembers(c.Request.Context(), id)
	if err != nil {
		handleError(c, err, "查询成员")
		return
	}
	page(c, members)
}

// AddMember 将人员加入团队
func (h *TeamHandler) AddMember(c *gin.Context) {
	id := c.Param("id")
	var req models.TeamMemberRequest
	if !bindJSON(c, &req) || !h.scoped(c, id) {
		return
	}

	if err := h.service.AddPersonToTeam(c.Request.Context(), id, req.PersonID); err != nil {
		handleError(c, err, "添加成员")
		return
	}
	response.SuccessWithMessage(c, "添加成功", nil)
}

// RemoveMember 将人员移出团队
func (h *TeamHandler) RemoveMember(c *gin.Context) {
	personID := c.Param("person_id")
	p, err := h.people.GetByID(c.Request.Context(), personID)
	if !inScope(c, err, func() string { return p.OrganizationID }) {
		return
	}
	if err == nil && p.TeamID != c.Param("id") {
		response.SuccessWithMessage(c, "人员不在该团队中", nil)
		return
	}

	if err := h.service.RemovePersonFromTeam(c.Request.Context(), personID); err != nil {
		handleError(c, err, "移除成员")
		return
	}
	response.SuccessWithMessage(c, "移除成功", nil)
}
