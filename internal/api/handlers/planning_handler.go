package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/replenish-go/internal/service"
)

type PlanningHandler struct {
	service *service.PlanningService
	dataDir string
}

func NewPlanningHandler(service *service.PlanningService, dataDir string) *PlanningHandler {
	return &PlanningHandler{service: service, dataDir: dataDir}
}

// TriggerRun executes a planning batch synchronously against the configured
// extract directory. Batch runs are minutes, not hours, so a blocking trigger
// endpoint is acceptable for the ops workflow this serves.
func (h *PlanningHandler) TriggerRun(c *gin.Context) {
	result, err := h.service.RunPlanning(c.Request.Context(), h.dataDir)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"run":              result.Run,
		"items":            result.Run.TotalItems,
		"fallback_items":   result.Run.FallbackItems,
		"accuracy_records": len(result.Accuracy),
	})
}

func (h *PlanningHandler) GetLatestRun(c *gin.Context) {
	run, err := h.service.GetLatestRun(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if run == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no planning runs yet"})
		return
	}
	c.JSON(http.StatusOK, run)
}

func (h *PlanningHandler) ListForecasts(c *gin.Context) {
	forecasts, err := h.service.ListForecasts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"forecasts": forecasts, "count": len(forecasts)})
}

func (h *PlanningHandler) GetForecast(c *gin.Context) {
	itemID := strings.TrimSpace(c.Param("item_id"))
	if itemID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "item_id is required"})
		return
	}

	forecast, err := h.service.GetForecast(c.Request.Context(), itemID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if forecast == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no active forecast for item"})
		return
	}
	c.JSON(http.StatusOK, forecast)
}

func (h *PlanningHandler) GetReorderPlan(c *gin.Context) {
	itemID := strings.TrimSpace(c.Param("item_id"))
	if itemID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "item_id is required"})
		return
	}

	plan, err := h.service.GetReorderPlan(c.Request.Context(), itemID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if plan == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no reorder plan for item"})
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (h *PlanningHandler) ListRecommendations(c *gin.Context) {
	urgency := strings.ToLower(strings.TrimSpace(c.Query("urgency")))
	switch urgency {
	case "", "critical", "high", "medium", "low":
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "urgency must be one of critical, high, medium, low"})
		return
	}

	recs, err := h.service.ListRecommendations(c.Request.Context(), urgency)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"recommendations": recs, "count": len(recs)})
}

func (h *PlanningHandler) ListAccuracy(c *gin.Context) {
	itemID := strings.TrimSpace(c.Query("item_id"))

	since := time.Now().AddDate(-1, 0, 0)
	if raw := strings.TrimSpace(c.Query("since")); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "since must be YYYY-MM-DD"})
			return
		}
		since = parsed
	}

	records, err := h.service.ListAccuracy(c.Request.Context(), itemID, since)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records, "count": len(records)})
}
