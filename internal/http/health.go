package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type healthResponse struct {
	Status    string `json:"status"`
	BootCount int64  `json:"boot_count"`
	Database  string `json:"database"`
	Redis     string `json:"redis"`
}

// health reads the boot counter, which doubles as a database check, and pings
// the token cache.
func (h *Handler) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	resp := healthResponse{Status: "ok", Database: "ok", Redis: "ok"}
	count, err := h.boot.StartupCount(ctx)
	if err != nil {
		h.logger.WithError(err).Warn("health: database")
		resp.Status, resp.Database = "degraded", "down"
	}
	resp.BootCount = count

	if h.cache != nil {
		if err := h.cache.Ping(ctx); err != nil {
			h.logger.WithError(err).Warn("health: redis")
			resp.Status, resp.Redis = "degraded", "down"
		}
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, resp)
}
