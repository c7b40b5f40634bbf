package routes

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"joblens/internal/api/handlers"
	"joblens/internal/api/middleware"
	"joblens/internal/config"
	"joblens/internal/runstore"
)

// SetupRoutes configures all API routes
func SetupRoutes(e *echo.Echo, cfg *config.Config, store runstore.Store) {
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(middleware.CORSConfig())

	health := e.Group("/health")
	{
		health.GET("", handlers.HealthHandler(cfg, store))
		health.GET("/live", handlers.LivenessHandler)
	}

	v1 := e.Group("/api/v1")
	{
		v1.POST("/research", handlers.TriggerResearchHandler(cfg, store))
		v1.GET("/research/:id", handlers.GetResearchHandler(store))
	}
}
