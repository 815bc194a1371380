package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/opsdesk-backend/internal/data/repos"
	types "github.com/yungbote/opsdesk-backend/internal/domain"
	"github.com/yungbote/opsdesk-backend/internal/http/response"
	"github.com/yungbote/opsdesk-backend/internal/services"
)

type NotificationHandler struct {
	notifications services.NotificationService
}

func NewNotificationHandler(notifications services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// POST /api/modules/:module/notifications
// body: { "linked_id": "...", "template_name": "...", "data": {...}, "configs": [...] }
// 202 when queued for the worker, 200 with per-config results otherwise.
func (h *NotificationHandler) Send(c *gin.Context) {
	var job types.NotificationJob
	if err := c.ShouldBindJSON(&job); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	job.Module = c.Param("module")
	res, err := h.notifications.Dispatch(c.Request.Context(), job)
	if err != nil {
		response.Error(c, "notification_send_failed", err)
		return
	}
	if res.Queued {
		c.JSON(http.StatusAccepted, res)
		return
	}
	response.RespondOK(c, res)
}

// GET /api/notifications/history?module=&linked_id=&channel=&limit=
func (h *NotificationHandler) History(c *gin.Context) {
	rows, err := h.notifications.History(c.Request.Context(), repos.HistoryQuery{
		ModuleName: strings.TrimSpace(c.Query("module")),
		LinkedID:   strings.TrimSpace(c.Query("linked_id")),
		Channel:    strings.TrimSpace(c.Query("channel")),
		Limit:      queryInt(c, "limit", 50),
	})
	if err != nil {
		response.Error(c, "notification_history_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"history": rows})
}
