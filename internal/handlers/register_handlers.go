package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/fincore/backoffice/internal/core/ports/services"
	"github.com/fincore/backoffice/internal/middleware"
	"github.com/fincore/backoffice/internal/platform/config"
)

// RegisterRoutes sets up all application routes, injecting dependencies using
// interfaces.
func RegisterRoutes(r *gin.Engine, cfg *config.Config, services *portssvc.ServiceContainer) {
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	setupAPIV1Routes(r, cfg, services)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific
// entity route registrations.
func setupAPIV1Routes(r *gin.Engine, cfg *config.Config, services *portssvc.ServiceContainer) {
	// Every v1 route requires an authenticated caller.
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret))

	RegisterJournalRoutes(v1, services.Ledger, services.Workflow, services.Finalizers)
	registerWorkflowRoutes(v1, services.Workflow)
	registerCompoundRoutes(v1, services.Compound)
}
