package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/edgemirror/image-cache-server/pkg/metrics"
)

func GetRouter(metricsListenAddress string, webHandler Handlers, withMetrics bool) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Error().Interface("panic", recovered).Str("path", c.Request.URL.Path).Msg("Recovered from panic")
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "internal error"})
	}))
	router.Use(RequestID(), GinLogger())
	if withMetrics {
		router.Use(metrics.PromReqMiddleware())
		go metrics.Server(metricsListenAddress)
	}
	router.Use(XForwardedProto("http"))

	router.GET("/healthz", HealthCheckEndpoint)
	router.GET("/ping", PingEndpoint)

	router.POST("/cache", webHandler.CacheImage)

	// Every other path is a stored object lookup (or a 404)
	router.NoRoute(webHandler.ServeObject)

	return router
}
