package api

import (
	"net/http"
	"time"

	"picture-wall/pkg/db"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	startedAt   time.Time
	environment string
}

func NewHealthHandler(environment string) *HealthHandler {
	return &HealthHandler{startedAt: time.Now(), environment: environment}
}

// Health 返回运行状态，数据库不可用时为 503
func (h *HealthHandler) Health(c *gin.Context) {
	status, code := "ok", http.StatusOK
	database := "ok"
	if err := db.Ping(); err != nil {
		status, code = "degraded", http.StatusServiceUnavailable
		database = err.Error()
	}
	c.JSON(code, gin.H{
		"status":      status,
		"uptime":      time.Since(h.startedAt).Round(time.Second).String(),
		"environment": h.environment,
		"database":    database,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
	})
}
