package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/rowcount-backend/internal/http/handlers"
	httpMW "github.com/yungbote/rowcount-backend/internal/http/middleware"
	"github.com/yungbote/rowcount-backend/internal/observability"
	"github.com/yungbote/rowcount-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	CORSOrigins []string
	ServiceName string

	CounterHandler      *httpH.CounterHandler
	QuickCounterHandler *httpH.QuickCounterHandler
	SettingsHandler     *httpH.SettingsHandler
	HealthHandler       *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins...))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")
	api.Use(httpMW.AttachOwner())
	{
		// Counters
		if h := cfg.CounterHandler; h != nil {
			api.POST("/counters", h.Create)
			api.GET("/counters", h.List)
			api.GET("/counters/:id", h.Get)
			api.DELETE("/counters/:id", h.Delete)

			api.POST("/counters/:id/increment", h.Increment)
			api.POST("/counters/:id/decrement", h.Decrement)
			api.POST("/counters/:id/reset", h.Reset)
			api.POST("/counters/:id/undo", h.Undo)
			api.PUT("/counters/:id/count", h.Restore)

			api.PATCH("/counters/:id/name", h.Rename)
			api.PUT("/counters/:id/details", h.UpdateDetails)
			api.POST("/counters/:id/archive", h.Archive)
			api.POST("/counters/:id/unarchive", h.Unarchive)

			api.POST("/counters/:id/notes", h.AddRowNote)
			api.GET("/counters/:id/notes", h.ListRowNotes)
			api.PATCH("/notes/:id", h.UpdateRowNote)

			api.POST("/counters/:id/sessions/start", h.StartSession)
			api.POST("/counters/:id/sessions/end", h.EndSession)
			api.GET("/counters/:id/sessions", h.ListSessions)

			api.POST("/counters/:id/reminders", h.AddReminder)
			api.GET("/counters/:id/reminders", h.ListReminders)
			api.PATCH("/reminders/:id", h.UpdateReminder)
		}

		// Quick counter
		if h := cfg.QuickCounterHandler; h != nil {
			api.GET("/quick-counters/:sid", h.Get)
			api.POST("/quick-counters/:sid/increment", h.Increment)
			api.POST("/quick-counters/:sid/decrement", h.Decrement)
			api.POST("/quick-counters/:sid/reset", h.Reset)
			api.POST("/quick-counters/:sid/undo", h.Undo)
			api.POST("/quick-counters/:sid/save", h.Save)
			api.DELETE("/quick-counters/:sid", h.Discard)
		}

		// Settings
		if h := cfg.SettingsHandler; h != nil {
			api.GET("/settings", h.Get)
			api.POST("/settings/first-run/complete", h.CompleteFirstRun)
			api.PUT("/settings/theme", h.UpdateTheme)
			api.PUT("/settings/haptics", h.SetHapticFeedback)
			api.POST("/settings/sync/enable", h.EnableSync)
			api.POST("/settings/sync/disable", h.DisableSync)
			api.POST("/settings/sync/record", h.RecordSuccessfulSync)
		}
	}

	return r
}
