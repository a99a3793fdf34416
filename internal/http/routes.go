package http

import (
	"taskboard/internal/config"
	"taskboard/internal/http/handlers"
	"taskboard/internal/http/middleware"
	"taskboard/internal/service"
	"taskboard/internal/session"
	"taskboard/internal/store"
	"taskboard/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

func RegisterRoutes(r *gin.Engine, db *pgxpool.Pool, version string, cfg *config.Config) {
	st := store.NewPostgres(db)
	h := handlers.NewHandler(db, st)
	healthHandler := handlers.NewHealthHandler(db, version)

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	// Registration endpoint
	api := r.Group("/api/v1")
	api.POST("/register", middleware.RedisRateLimit(cfg.RegisterRateLimit, cfg.RegisterRateWindow), h.Register)

	// The command socket: session registry, fan-out and router are
	// per-process singletons shared by every connection.
	registry := session.NewRegistry()
	notifier := session.NewNotifier(registry)
	auth := service.NewAuthService(st)
	lists := service.NewTaskListService(st)
	router := ws.NewRouter(auth, lists, registry, notifier)
	r.GET("/ws", h.WS(router, registry))

	// Registration page and other assets, when configured
	if cfg.StaticDir != "" {
		r.StaticFS("/assets", gin.Dir(cfg.StaticDir, false))
	}
}
