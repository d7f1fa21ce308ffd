package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

type RouterConfig struct {
	// ServiceName enables otelgin spans when non-empty.
	ServiceName string
	// MaxUploadBytes caps multipart memory; zero keeps gin's default.
	MaxUploadBytes int64
}

// NewRouter builds the engine with middleware and all routes.
func NewRouter(h *Handler, cfg RouterConfig) *gin.Engine {
	router := gin.New()
	if cfg.MaxUploadBytes > 0 {
		router.MaxMultipartMemory = cfg.MaxUploadBytes
	}

	// OTel span first so recovery and logging see the trace context.
	if cfg.ServiceName != "" {
		router.Use(otelgin.Middleware(cfg.ServiceName))
	}
	router.Use(Recovery())
	router.Use(Logger())

	SetupRoutes(router, h)
	return router
}

func SetupRoutes(router *gin.Engine, h *Handler) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "pourfix"})
	})

	api := router.Group("/api")
	{
		api.POST("/upload", h.Upload)
		api.GET("/status/:job_id", h.Status)
		api.GET("/download/:job_id/fixed.zip", h.Download)
		api.GET("/report/:job_id", h.Report)
		api.GET("/report/:job_id/sarif", h.SARIF)
	}
}
