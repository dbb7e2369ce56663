package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/rowcount-backend/internal/platform/apierr"
)

// RespondDomainError writes err with the status its error code maps to.
func RespondDomainError(c *gin.Context, err error) {
	ae := apierr.From(err)
	if ae == nil {
		RespondError(c, http.StatusInternalServerError, "internal", nil)
		return
	}
	RespondError(c, ae.Status, ae.Code, ae.Err)
}
