package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) initHealthRoutes(api *gin.RouterGroup) {
	api.GET("/health", h.health)
}

// @Summary Liveness probe
// @Tags Health
// @ModuleID health
// @Produce  json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
