package v1

import (
	"github.com/investhub/backend/internal/config"
	"github.com/investhub/backend/internal/service"

	"github.com/gin-gonic/gin"
)

// @title InvestHub API
// @version 1.0
// @description Accounts, email verification, KYC review and admin analytics.

// @BasePath /api/v1

// @securityDefinitions.apikey AdminAuth
// @in header
// @name Authorization

// @securityDefinitions.apikey UserAuth
// @in header
// @name Authorization

type Handler struct {
	services *service.Services
	config   *config.Config
}

func NewHandler(services *service.Services, config *config.Config) *Handler {
	return &Handler{
		services: services,
		config:   config,
	}
}

func (h *Handler) Init(api *gin.RouterGroup) {
	v1 := api.Group("v1")

	h.initHealthRoutes(v1)
	h.initAuthRoutes(v1)
	h.initUsersRoutes(v1)
	h.initKYCRoutes(v1)
	h.initNotificationsRoutes(v1)
	h.initAdminRoutes(v1)
}
