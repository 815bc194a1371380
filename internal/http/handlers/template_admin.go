package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/yungbote/opsdesk-backend/internal/domain"
	"github.com/yungbote/opsdesk-backend/internal/http/response"
	"github.com/yungbote/opsdesk-backend/internal/services"
)

type TemplateAdminHandler struct {
	admin services.TemplateAdminService
}

func NewTemplateAdminHandler(admin services.TemplateAdminService) *TemplateAdminHandler {
	return &TemplateAdminHandler{admin: admin}
}

// GET /api/templates?module=&type=&q=&active=
func (h *TemplateAdminHandler) List(c *gin.Context) {
	q := services.TemplateListQuery{
		ModuleName:   strings.TrimSpace(c.Query("module")),
		TemplateType: types.TemplateType(strings.TrimSpace(c.Query("type"))),
		Query:        strings.TrimSpace(c.Query("q")),
	}
	if active := queryBool(c, "active"); active != nil {
		q.ActiveOnly = *active
	}
	rows, err := h.admin.List(c.Request.Context(), q)
	if err != nil {
		response.Error(c, "template_list_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"templates": rows})
}

// GET /api/templates/:id
func (h *TemplateAdminHandler) Get(c *gin.Context) {
	id, ok := templateID(c)
	if !ok {
		return
	}
	row, err := h.admin.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, "template_get_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"template": row})
}

// POST /api/templates
func (h *TemplateAdminHandler) Create(c *gin.Context) {
	var in services.TemplateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	saved, err := h.admin.Create(c.Request.Context(), in)
	if err != nil {
		response.Error(c, "template_create_failed", err)
		return
	}
	response.RespondCreated(c, saved)
}

// PUT /api/templates/:id
func (h *TemplateAdminHandler) Update(c *gin.Context) {
	id, ok := templateID(c)
	if !ok {
		return
	}
	var in services.TemplateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	saved, err := h.admin.Update(c.Request.Context(), id, in)
	if err != nil {
		response.Error(c, "template_update_failed", err)
		return
	}
	response.RespondOK(c, saved)
}

// DELETE /api/templates/:id
func (h *TemplateAdminHandler) Delete(c *gin.Context) {
	id, ok := templateID(c)
	if !ok {
		return
	}
	if err := h.admin.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, "template_delete_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// POST /api/templates/:id/preview
func (h *TemplateAdminHandler) Preview(c *gin.Context) {
	id, ok := templateID(c)
	if !ok {
		return
	}
	res, err := h.admin.Preview(c.Request.Context(), id)
	if err != nil {
		response.Error(c, "template_preview_failed", err)
		return
	}
	response.RespondOK(c, res)
}

func templateID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_template_id", err)
		return uuid.Nil, false
	}
	return id, true
}
