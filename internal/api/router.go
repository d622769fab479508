package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/archetype/archetype/internal/api/handlers"
	"github.com/archetype/archetype/internal/api/middleware"
	"github.com/archetype/archetype/internal/api/response"
	"github.com/archetype/archetype/internal/observability/metrics"
)

type Router struct {
	engine         *gin.Engine
	authMiddleware *middleware.AuthMiddleware
	authHandler    *handlers.AuthHandler
	userHandler    *handlers.UserHandler
	metrics        *metrics.Metrics
	logger         *zap.Logger
}

func NewRouter(
	tokens middleware.TokenValidator,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Router {
	return &Router{
		authMiddleware: middleware.NewAuthMiddleware(tokens),
		authHandler:    authHandler,
		userHandler:    userHandler,
		metrics:        m,
		logger:         logger,
	}
}

// Setup builds the gin engine. allowedOrigins configures CORS; an empty
// list disables cross-origin access.
func (r *Router) Setup(mode string, allowedOrigins []string) http.Handler {
	gin.SetMode(mode)
	r.engine = gin.New()
	r.engine.Use(middleware.RequestContext(r.logger))
	r.engine.Use(middleware.AccessLog(r.logger))
	r.engine.Use(middleware.Recovery(r.logger))
	r.engine.Use(middleware.Metrics(r.metrics))
	r.engine.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "route not found")
	})

	r.setupRoutes()

	return cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", middleware.HeaderCorrelationID},
		ExposedHeaders:   []string{middleware.HeaderRequestID, middleware.HeaderCorrelationID},
	}).Handler(r.engine)
}

func (r *Router) setupRoutes() {
	r.engine.GET("/metrics", gin.WrapH(r.metrics.Handler()))

	api := r.engine.Group("/api")

	// Health check
	api.GET("/health", func(c *gin.Context) {
		response.OK(c, gin.H{"status": "ok"})
	})

	// Auth routes (public)
	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/register", r.authHandler.Register)
		authRoutes.POST("/login", r.authHandler.Login)
	}

	// Protected routes
	protected := api.Group("")
	protected.Use(r.authMiddleware.Authenticate())
	{
		// Current user
		protected.GET("/auth/me", r.authHandler.Me)

		users := protected.Group("/users")
		{
			users.GET("", r.userHandler.List)
			users.POST("/search", r.userHandler.Search)
			users.GET("/:id", r.userHandler.Get)
		}
	}
}
