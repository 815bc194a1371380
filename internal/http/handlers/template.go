package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/opsdesk-backend/internal/http/response"
	"github.com/yungbote/opsdesk-backend/internal/modules/templating"
	"github.com/yungbote/opsdesk-backend/internal/services"
)

// TemplateHandler exposes the templating engine: expansion, prompts,
// notification previews and template validation.
type TemplateHandler struct {
	templates services.TemplateService
}

func NewTemplateHandler(templates services.TemplateService) *TemplateHandler {
	return &TemplateHandler{templates: templates}
}

// POST /api/templates/expand
// body: { "template": "...", "context": {...} }
func (h *TemplateHandler) Expand(c *gin.Context) {
	var req struct {
		Template string             `json:"template"`
		Context  templating.Context `json:"context"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	response.RespondOK(c, gin.H{"result": h.templates.Expand(req.Template, req.Context)})
}

// POST /api/modules/:module/prompts
func (h *TemplateHandler) GeneratePrompt(c *gin.Context) {
	var req services.PromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	res, err := h.templates.GeneratePrompt(c.Request.Context(), c.Param("module"), req)
	if err != nil {
		response.Error(c, "prompt_failed", err)
		return
	}
	response.RespondOK(c, res)
}

// POST /api/modules/:module/notifications/preview
// body: { "data": {...}, "channel": "slack" | "email" | "sms" }
func (h *TemplateHandler) PreviewNotification(c *gin.Context) {
	var req struct {
		Data    templating.Context `json:"data"`
		Channel string             `json:"channel"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	res, err := h.templates.PreviewNotification(c.Request.Context(), c.Param("module"), req.Data, req.Channel)
	if err != nil {
		response.Error(c, "notification_preview_failed", err)
		return
	}
	response.RespondOK(c, res)
}

// GET /api/modules/:module/variables
func (h *TemplateHandler) ListVariables(c *gin.Context) {
	vars, err := h.templates.ListVariables(c.Request.Context(), c.Param("module"))
	if err != nil {
		response.Error(c, "variable_list_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"variables": vars})
}

// POST /api/modules/:module/templates/validate
// body: { "template": "..." }
func (h *TemplateHandler) ValidateTemplate(c *gin.Context) {
	var req struct {
		Template string `json:"template"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	res, err := h.templates.ValidateTemplate(c.Request.Context(), req.Template, c.Param("module"))
	if err != nil {
		response.Error(c, "template_validation_failed", err)
		return
	}
	response.RespondOK(c, res)
}
