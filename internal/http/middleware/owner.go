package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/rowcount-backend/internal/http/response"
	"github.com/yungbote/rowcount-backend/internal/platform/ctxutil"
)

// HeaderOwnerUserID scopes a request to one owner's counters. Requests
// without it work in the unowned partition.
const HeaderOwnerUserID = "X-Owner-User-Id"

func AttachOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		rd := &ctxutil.RequestData{}
		if raw := strings.TrimSpace(c.GetHeader(HeaderOwnerUserID)); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil || id == uuid.Nil {
				if err == nil {
					err = errors.New("owner id cannot be the nil uuid")
				}
				response.RespondError(c, http.StatusBadRequest, "invalid_owner_user_id", err)
				c.Abort()
				return
			}
			rd.OwnerUserID = &id
		}
		c.Request = c.Request.WithContext(ctxutil.WithRequestData(c.Request.Context(), rd))
		c.Next()
	}
}
