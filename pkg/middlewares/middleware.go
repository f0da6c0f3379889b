package middlewares

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"taskmanager/pkg/config"
	"taskmanager/pkg/logging"
	"taskmanager/pkg/telemetry"
)

func MetricsMiddleware(metrics *telemetry.AppMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		metrics.IncrementActiveConnections(c.Request.Context())
		defer metrics.DecrementActiveConnections(c.Request.Context())

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()

		metrics.RecordRequest(
			c.Request.Context(),
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
			duration,
		)
	}
}

func SetupGinMiddleware(router *gin.Engine, metrics *telemetry.AppMetrics, logger *logging.LokiLogger, cfg *config.AppConfig) {
	httpsEnforcer := NewHTTPSEnforcer(logger.Logger.Logger, cfg.EnforceHTTPS)
	router.Use(httpsEnforcer.HTTPSMiddleware())

	router.Use(otelgin.Middleware(cfg.ServiceName))

	router.Use(LoggingMiddleware(logger))

	if metrics != nil {
		router.Use(MetricsMiddleware(metrics))
	}

	if cfg.RateLimitEnabled {
		rateLimiter := NewRateLimiter(logger.Logger.Logger, metrics, cfg.RateLimitConfigs)
		router.Use(rateLimiter.RateLimitMiddleware())
	}
}
