package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yigit/questionbank/internal/app/models/dto"
)

// HealthCheck probes one dependency
type HealthCheck func(ctx context.Context) error

// HealthController reports dependency status
type HealthController struct {
	required map[string]HealthCheck
	optional map[string]HealthCheck
}

// NewHealthController creates a HealthController. A failing required check
// makes the service unhealthy; a failing optional one only degrades it.
func NewHealthController(required, optional map[string]HealthCheck) *HealthController {
	return &HealthController{required: required, optional: optional}
}

// Health reports the status of every dependency
// @Summary Health check
// @Tags ops
// @Produce json
// @Success 200 {object} dto.APIResponse
// @Failure 503 {object} dto.APIResponse
// @Router /health [get]
func (c *HealthController) Health(ctx *gin.Context) {
	checkCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	components := make(map[string]string, len(c.required)+len(c.optional))
	healthy := true
	for name, check := range c.required {
		if err := check(checkCtx); err != nil {
			components[name] = "down: " + err.Error()
			healthy = false
			continue
		}
		components[name] = "up"
	}
	for name, check := range c.optional {
		if err := check(checkCtx); err != nil {
			components[name] = "unavailable"
			continue
		}
		components[name] = "up"
	}

	status := http.StatusOK
	resp := dto.NewSuccessResponse(gin.H{"status": "ok", "components": components}, "")
	if !healthy {
		status = http.StatusServiceUnavailable
		resp.Success = false
		resp.Data = gin.H{"status": "unhealthy", "components": components}
	}
	ctx.JSON(status, resp)
}
