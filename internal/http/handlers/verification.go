package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/opsdesk-backend/internal/http/response"
	"github.com/yungbote/opsdesk-backend/internal/services"
)

type VerificationHandler struct {
	verification services.VerificationService
}

func NewVerificationHandler(verification services.VerificationService) *VerificationHandler {
	return &VerificationHandler{verification: verification}
}

// GET /api/verification
func (h *VerificationHandler) VerifyAll(c *gin.Context) {
	response.RespondOK(c, gin.H{"reports": h.verification.VerifyAll(c.Request.Context())})
}

// GET /api/verification/:module
func (h *VerificationHandler) VerifyModule(c *gin.Context) {
	response.RespondOK(c, gin.H{"results": h.verification.VerifyModule(c.Request.Context(), c.Param("module"))})
}
