// internal/api/api.go
package api

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/replenish-go/internal/api/handlers"
	"github.com/andresuchdata/replenish-go/internal/api/middleware"
	"github.com/andresuchdata/replenish-go/internal/service"
)

type Services struct {
	PlanningService *service.PlanningService
	DataDir         string
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	// Add middleware
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	apiGroup := router.Group("/api/v1")

	if services != nil && services.PlanningService != nil {
		planningHandler := handlers.NewPlanningHandler(services.PlanningService, services.DataDir)
		planningGroup := apiGroup.Group("/planning")
		{
			planningGroup.POST("/runs", planningHandler.TriggerRun)
			planningGroup.GET("/runs/latest", planningHandler.GetLatestRun)
			planningGroup.GET("/forecasts", planningHandler.ListForecasts)
			planningGroup.GET("/forecasts/:item_id", planningHandler.GetForecast)
			planningGroup.GET("/plans/:item_id", planningHandler.GetReorderPlan)
			planningGroup.GET("/recommendations", planningHandler.ListRecommendations)
			planningGroup.GET("/accuracy", planningHandler.ListAccuracy)
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
