package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/opsdesk-backend/internal/http/response"
	"github.com/yungbote/opsdesk-backend/internal/modules/templating"
	"github.com/yungbote/opsdesk-backend/internal/services"
)

type FieldHandler struct {
	templates services.TemplateService
}

func NewFieldHandler(templates services.TemplateService) *FieldHandler {
	return &FieldHandler{templates: templates}
}

// GET /api/modules/:module/fields?ai_enabled=&variable_enabled=&visible=
func (h *FieldHandler) ListFields(c *gin.Context) {
	filter := templating.FieldFilter{
		AIEnabled:       queryBool(c, "ai_enabled"),
		VariableEnabled: queryBool(c, "variable_enabled"),
		Visible:         queryBool(c, "visible"),
	}
	fields, err := h.templates.ListFields(c.Request.Context(), c.Param("module"), filter)
	if err != nil {
		response.Error(c, "field_list_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"fields": fields})
}

// POST /api/modules/:module/records/validate
// body: { "data": {...} }
func (h *FieldHandler) ValidateRecord(c *gin.Context) {
	var req struct {
		Data templating.Context `json:"data"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	res, err := h.templates.ValidateRecord(c.Request.Context(), c.Param("module"), req.Data)
	if err != nil {
		response.Error(c, "record_validation_failed", err)
		return
	}
	response.RespondOK(c, res)
}
