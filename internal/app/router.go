package app

import (
	"learn_my_way_backend/internal/config"
	"learn_my_way_backend/internal/middleware"
	"learn_my_way_backend/internal/model"
	"learn_my_way_backend/pkg/monitoring"

	_ "learn_my_way_backend/docs"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	// Swagger文档
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Prometheus指标
	router.GET("/metrics", monitoring.PrometheusHandler())

	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}

	auth := router.Group("/api")
	auth.Use(middleware.AuthMiddleware(cfg))
	auth.Use(middleware.ActivityMiddleware(repos.user))
	{
		auth.GET("/profile", c.auth.GetProfile)
		auth.PUT("/profile", c.auth.UpdateProfile)

		challenges := auth.Group("/challenges")
		{
			challenges.GET("/:type/status", c.challenge.GetStatus)
			challenges.POST("/:type/start", c.challenge.Start)
			challenges.PUT("/:type/progress", c.challenge.SaveProgress)
			challenges.POST("/:type/complete", c.challenge.Complete)
			challenges.POST("/:type/reattempt", c.challenge.Reattempt)
			challenges.GET("/results", c.challenge.GetResults)
		}

		auth.GET("/progress", c.progress.GetProgress)
		auth.GET("/materials", c.material.List)

		teacher := auth.Group("")
		teacher.Use(middleware.RoleMiddleware(model.Teacher))
		{
			teacher.POST("/materials", c.material.Upload)
			teacher.GET("/teacher/results", c.progress.GetAllResults)
			teacher.GET("/teacher/students", c.progress.GetStudents)
		}
	}
}
