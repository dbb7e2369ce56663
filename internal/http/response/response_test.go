package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	domainagg "github.com/yungbote/rowcount-backend/internal/domain/aggregates"
	"github.com/yungbote/rowcount-backend/internal/platform/ctxutil"
)

func TestRespondDomainError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", domainagg.Validation("counter.name", "name cannot be empty"), http.StatusBadRequest, "validation"},
		{"not found", domainagg.NewError(domainagg.CodeNotFound, "counter.get", "counter x not found", nil), http.StatusNotFound, "not_found"},
		{"conflict", domainagg.Wrap(domainagg.CodeConflict, "Counter.Commit", errors.New("boom")), http.StatusConflict, "conflict"},
		{"precondition", domainagg.Precondition("work_session.end", "no work session is running"), http.StatusPreconditionFailed, "precondition_failed"},
		{"plain", errors.New("redis down"), http.StatusInternalServerError, "internal"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			RespondDomainError(c, tc.err)

			if rec.Code != tc.status {
				t.Fatalf("status = %d, want %d", rec.Code, tc.status)
			}
			var env ErrorEnvelope
			if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if env.Error.Code != tc.code || env.Error.Message == "" {
				t.Fatalf("unexpected envelope: %+v", env)
			}
		})
	}
}

func TestErrorEnvelopeCarriesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	req := httptest.NewRequest(http.MethodGet, "/api/counters/x", nil)
	c.Request = req.WithContext(ctxutil.WithTraceData(req.Context(), &ctxutil.TraceData{RequestID: "req-42"}))

	RespondError(c, http.StatusBadRequest, "invalid_id", errors.New("bad id"))

	var env ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Error.RequestID != "req-42" || env.Error.Code != "invalid_id" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
}
