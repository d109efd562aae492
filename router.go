package main

import (
	"tutor-service/config"
	"tutor-service/handlers"
	"tutor-service/llm"
	"tutor-service/middleware"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	EndPointHealth       = "/health"
	EndPointFlags        = "/flags"
	EndPointVersion      = "/version"
	EndPointMetrics      = "/metrics"
	EndPointTutorStream  = "/tutor-stream"
	EndPointTutorWS      = "/tutor-ws"
	EndPointValidate     = "/validate"
	EndPointChecks       = "/validate/checks"
	EndPointExport       = "/export"
	EndPointExportDocx   = "/export/docx"
	EndPointSessionStart = "/session/start"
)

func setupRouter(cfg *config.Config, streamer llm.Streamer) *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.NoMethod(handlers.MethodNotAllowed)

	router.Use(gin.Recovery())
	router.Use(middleware.AccessLog())
	router.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	tutorHandler := handlers.NewTutorHandler(cfg, streamer)
	validateHandler := handlers.NewValidateHandler()
	exportHandler := handlers.NewExportHandler()
	sessionHandler := handlers.NewSessionHandler()

	// Streaming endpoints: never compressed, rate limited and capped.
	limiter := middleware.NewRateLimiter(cfg.RateLimitWindow, cfg.RateLimitMaxRequests, cfg.RateLimitSecret, cfg.CookieSecure)
	streaming := router.Group("/")
	streaming.Use(limiter.Middleware())
	{
		capped := streaming.Group("/")
		capped.Use(middleware.SessionCap(cfg.SessionTokenCap, cfg.CharsPerToken))
		capped.GET(EndPointTutorStream, tutorHandler.Stream)
		capped.POST(EndPointTutorStream, tutorHandler.Stream)

		// The WebSocket sink applies the same budget itself.
		streaming.GET(EndPointTutorWS, tutorHandler.StreamWS)
	}

	api := router.Group("/")
	api.Use(gzip.Gzip(gzip.DefaultCompression))
	{
		api.GET(EndPointHealth, handlers.HealthCheck)
		api.GET(EndPointFlags, handlers.Flags)
		api.GET(EndPointVersion, handlers.Version)

		api.POST(EndPointValidate, validateHandler.Validate)
		api.POST(EndPointChecks, validateHandler.Checks)

		api.POST(EndPointExport, exportHandler.Markdown)
		api.POST(EndPointExportDocx, exportHandler.Docx)

		api.POST(EndPointSessionStart, sessionHandler.StartSession)
	}

	router.GET(EndPointMetrics, gin.WrapH(promhttp.Handler()))

	return router
}
