package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/rowcount-backend/internal/platform/ctxutil"
)

type APIError struct {
	Message   string `json:"message"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// NewErrorEnvelope builds the error body, tagging it with the request id on
// c when one was assigned.
func NewErrorEnvelope(c *gin.Context, code string, err error) ErrorEnvelope {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	env := ErrorEnvelope{Error: APIError{Message: msg, Code: code}}
	if c != nil && c.Request != nil {
		env.Error.RequestID = ctxutil.RequestID(c.Request.Context())
	}
	return env
}

func RespondError(c *gin.Context, status int, code string, err error) {
	c.JSON(status, NewErrorEnvelope(c, code, err))
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
