package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/opsdesk-backend/internal/platform/apierr"
)

// Error writes err using the status and code it carries. Errors that are
// not *apierr.Error become a 500 with fallbackCode; their message is hidden.
func Error(c *gin.Context, fallbackCode string, err error) {
	ae := apierr.From(err, fallbackCode)
	if ae == nil {
		RespondError(c, http.StatusInternalServerError, fallbackCode, nil)
		return
	}
	status := ae.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}
	if status >= http.StatusInternalServerError && ae.Code == fallbackCode {
		RespondError(c, status, ae.Code, errInternal)
		return
	}
	code := ae.Code
	if code == "" {
		code = fallbackCode
	}
	RespondError(c, status, code, ae)
}

var errInternal = errors.New("internal server error")
