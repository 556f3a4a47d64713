package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/organivo/organivo/internal/auth"
	"github.com/organivo/organivo/internal/handlers"
	"github.com/organivo/organivo/internal/mailer"
	"github.com/organivo/organivo/internal/middleware"
	"github.com/organivo/organivo/internal/types"
)

// Dependencies carries everything the route handlers are constructed with.
type Dependencies struct {
	Tokens *auth.TokenManager
	Hasher *auth.PasswordHasher
	Mailer mailer.Mailer

	// Limiter guards the public auth endpoints; nil disables limiting.
	Limiter *middleware.RateLimiter

	Domain string
}

func New(deps Dependencies) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Use(middleware.ErrorHandler())

	hub := handlers.NewBoardHub()

	authHandler := &handlers.Auth{
		Hasher: deps.Hasher,
		Tokens: deps.Tokens,
		Mail:   deps.Mailer,
		Domain: deps.Domain,
	}

	projectHandler := &handlers.Projects{Hub: hub}
	listHandler := &handlers.Lists{Hub: hub}
	taskHandler := &handlers.Tasks{Hub: hub}
	board := &handlers.Board{Hub: hub, Origins: types.AllowedOrigins}

	requireAuth := middleware.Auth(deps.Tokens, deps.Domain)

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)
		api.GET("/ws/:project_id", requireAuth, board.Serve)

		public := api.Group("/auth")
		{
			if deps.Limiter != nil {
				public.Use(middleware.RateLimit(deps.Limiter))
			}

			public.POST("/register", authHandler.Register)
			public.POST("/login", authHandler.Login)
			public.POST("/verify-email", authHandler.VerifyEmail)
			public.POST("/resend-verification", authHandler.ResendVerification)
		}

		protected := api.Group("/auth", requireAuth)
		{
			protected.GET("/session", authHandler.GetSession)
			protected.GET("/profile", authHandler.GetProfile)
			protected.PATCH("/profile", authHandler.UpdateProfile)
			protected.PATCH("/password", authHandler.UpdatePassword)
			protected.PATCH("/email", authHandler.UpdateEmail)
			protected.POST("/email/resend", authHandler.ResendEmailChangeCode)
			protected.POST("/email/verify", authHandler.VerifyNewEmail)
			protected.POST("/logout", authHandler.Logout)
		}

		projects := api.Group("/projects", requireAuth)
		{
			projects.GET("/stats", projectHandler.Stats)

			projects.POST("", projectHandler.Create)
			projects.GET("", projectHandler.List)
			projects.GET("/:project_id", projectHandler.Get)
			projects.PUT("/:project_id", projectHandler.Update)
			projects.DELETE("/:project_id", projectHandler.Delete)

			projects.GET("/:project_id/data", projectHandler.GetData)

			projects.POST("/:project_id/lists", listHandler.Create)
			projects.PATCH("/:project_id/lists", listHandler.Reorder)
			projects.PUT("/:project_id/lists/:list_id", listHandler.Update)
			projects.DELETE("/:project_id/lists/:list_id", listHandler.Delete)

			projects.POST("/:project_id/tasks", taskHandler.Create)
			projects.PATCH("/:project_id/tasks", taskHandler.Reorder)
			projects.PATCH("/:project_id/tasks/:task_id", taskHandler.Update)
			projects.DELETE("/:project_id/tasks/:task_id", taskHandler.Delete)
		}
	}

	return r
}
