package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/application/identity"
)

// DepartmentHandler handles departments and their membership
type DepartmentHandler struct {
	BaseHandler
	departmentService *identity.DepartmentService
}

// NewDepartmentHandler creates a new DepartmentHandler
func NewDepartmentHandler(departmentService *identity.DepartmentService) *DepartmentHandler {
	return &DepartmentHandler{departmentService: departmentService}
}

// AssignMemberRequest adds a user to a department
type AssignMemberRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
}

// Create godoc
// @Summary      Create a department
// @Description  Department names are unique regardless of case
// @Tags         departments
// @Accept       json
// @Produce      json
// @Param        request body identity.CreateDepartmentRequest true "Department"
// @Success      201 {object} dto.Response{data=identity.DepartmentResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/departments [post]
func (h *DepartmentHandler) Create(c *gin.Context) {
	var req identity.CreateDepartmentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	dept, err := h.departmentService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, dept)
}

// GetByID godoc
// @Summary      Get a department
// @Tags         departments
// @Produce      json
// @Param        id path string true "Department ID"
// @Success      200 {object} dto.Response{data=identity.DepartmentResponse}
// @Security     BearerAuth
// @Router       /admin/departments/{id} [get]
func (h *DepartmentHandler) GetByID(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	dept, err := h.departmentService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dept)
}

// List godoc
// @Summary      List departments
// @Tags         departments
// @Produce      json
// @Success      200 {object} dto.Response{data=[]identity.DepartmentResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /admin/departments [get]
func (h *DepartmentHandler) List(c *gin.Context) {
	var filter identity.DepartmentListFilter
	if !h.BindQuery(c, &filter) {
		return
	}

	result, err := h.departmentService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	SuccessPage(&h.BaseHandler, c, result)
}

// Update godoc
// @Summary      Update a department
// @Tags         departments
// @Accept       json
// @Produce      json
// @Param        id path string true "Department ID"
// @Param        request body identity.UpdateDepartmentRequest true "Changes"
// @Success      200 {object} dto.Response{data=identity.DepartmentResponse}
// @Security     BearerAuth
// @Router       /admin/departments/{id} [put]
func (h *DepartmentHandler) Update(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req identity.UpdateDepartmentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	dept, err := h.departmentService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dept)
}

// Delete godoc
// @Summary      Delete a department
// @Tags         departments
// @Param        id path string true "Department ID"
// @Success      204
// @Security     BearerAuth
// @Router       /admin/departments/{id} [delete]
func (h *DepartmentHandler) Delete(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	if err := h.departmentService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ListMembers godoc
// @Summary      List department members
// @Tags         departments
// @Produce      json
// @Param        id path string true "Department ID"
// @Success      200 {object} dto.Response{data=[]identity.UserResponse}
// @Security     BearerAuth
// @Router       /admin/departments/{id}/members [get]
func (h *DepartmentHandler) ListMembers(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	members, err := h.departmentService.ListMembers(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, members)
}

// AssignUser godoc
// @Summary      Add a user to a department
// @Tags         departments
// @Accept       json
// @Param        id path string true "Department ID"
// @Param        request body AssignMemberRequest true "User"
// @Success      204
// @Security     BearerAuth
// @Router       /admin/departments/{id}/members [post]
func (h *DepartmentHandler) AssignUser(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req AssignMemberRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.departmentService.AssignUser(c.Request.Context(), id, req.UserID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// RemoveUser godoc
// @Summary      Remove a user from a department
// @Tags         departments
// @Param        id path string true "Department ID"
// @Param        user_id path string true "User ID"
// @Success      204
// @Security     BearerAuth
// @Router       /admin/departments/{id}/members/{user_id} [delete]
func (h *DepartmentHandler) RemoveUser(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}
	userID, ok := h.ParamUUID(c, "user_id")
	if !ok {
		return
	}

	if err := h.departmentService.RemoveUser(c.Request.Context(), id, userID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ListForUser godoc
// @Summary      List a user's departments
// @Tags         departments
// @Produce      json
// @Param        id path string true "User ID"
// @Success      200 {object} dto.Response{data=[]identity.DepartmentResponse}
// @Security     BearerAuth
// @Router       /admin/users/{id}/departments [get]
func (h *DepartmentHandler) ListForUser(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id")
	if !ok {
		return
	}

	depts, err := h.departmentService.ListForUser(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, depts)
}
