package app

import (
	"learnsphere_backend/docs"
	"learnsphere_backend/internal/config"
	"learnsphere_backend/internal/middleware"
	"learnsphere_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	a.registerPublicRoutes(router, c)

	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		a.registerCourseRoutes(authGroup, c)
		a.registerXPRoutes(authGroup, c)

		authGroup.GET("/profile", c.auth.GetProfile)
		authGroup.POST("/chat", c.chat.Chat)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}
}

func (a *App) registerCourseRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/courses", c.course.List)
	rg.POST("/courses", c.course.Generate)
	rg.GET("/courses/:id", c.course.Get)
	rg.DELETE("/courses/:id", c.course.Delete)
	rg.POST("/courses/:id/image", c.course.UploadImage)

	rg.POST("/quiz/complete", c.quiz.Complete)
	rg.POST("/quiz/regenerate", c.quiz.Regenerate)
}

func (a *App) registerXPRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/xp", c.xp.GetProfile)
	rg.POST("/xp/add", c.xp.AddXP)
	rg.POST("/xp/achievement", c.xp.AddAchievement)
	rg.POST("/xp/streak", c.xp.UpdateStreak)
	rg.GET("/xp/rank", c.xp.Rank)
	rg.GET("/leaderboard", c.xp.Leaderboard)

	rg.POST("/lessons/complete", c.xp.CompleteLesson)
}
