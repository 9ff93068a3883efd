package httpserver

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"asset_tracker/internal/auth"
	"asset_tracker/internal/http/handlers"
	"asset_tracker/internal/http/middleware"
)

// Deps are the core services the router exposes.
type Deps struct {
	Lifecycle handlers.Lifecycle
	Reader    handlers.Reader
	Searcher  handlers.Searcher
	History   handlers.Historian
	Audit     handlers.AuditLister
	DB        handlers.Pinger
	Limiter   *middleware.RateLimiter
	Logger    *zap.Logger
	JWTSecret string
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(d.Logger), middleware.Recovery(d.Logger))

	r.GET("/healthz", handlers.Healthz(d.DB))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1", auth.JWT(d.JWTSecret))
	if d.Limiter != nil {
		api.Use(d.Limiter.Middleware())
	}
	{
		assets := api.Group("/assets")
		assets.POST("", handlers.RegisterAssets(d.Lifecycle))
		assets.POST("/validate-serials", handlers.ValidateSerials(d.Lifecycle))
		assets.GET("", handlers.ListAssets(d.Reader))
		assets.GET("/:id", handlers.GetAsset(d.Reader))
		assets.POST("/:id/assign", handlers.AssignAsset(d.Lifecycle))
		assets.POST("/:id/repair", handlers.SendToRepair(d.Lifecycle))
		assets.GET("/:id/history", handlers.AssetHistory(d.History))

		assignments := api.Group("/assignments")
		assignments.GET("/:id", handlers.GetAssignment(d.Reader))
		assignments.POST("/:id/return", handlers.ReturnAssignment(d.Lifecycle))
		assignments.POST("/:id/cancel", handlers.CancelAssignment(d.Lifecycle))

		repairs := api.Group("/repairs")
		repairs.GET("/:id", handlers.GetRepair(d.Reader))
		repairs.POST("/:id/return", handlers.ReturnFromRepair(d.Lifecycle))

		api.GET("/search", handlers.Search(d.Searcher))
		api.GET("/audit", handlers.ListAudit(d.Audit))
	}

	return r
}
