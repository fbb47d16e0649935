package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/fincore/backoffice/internal/core/ports/services"
	"github.com/fincore/backoffice/internal/dto"
	"github.com/fincore/backoffice/internal/middleware"
)

// workflowHandler handles HTTP requests for approval workflows.
type workflowHandler struct {
	workflowService portssvc.WorkflowSvcFacade
}

// newWorkflowHandler creates a new workflowHandler.
func newWorkflowHandler(workflowService portssvc.WorkflowSvcFacade) *workflowHandler {
	return &workflowHandler{
		workflowService: workflowService,
	}
}

// processAction approves or rejects a pending workflow action on behalf of the
// authenticated user.
func (h *workflowHandler) processAction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actionID := c.Param("actionID")

	actionReq := dto.ProcessActionRequest{}
	if err := c.ShouldBindJSON(&actionReq); err != nil {
		logger.Error("Failed to bind JSON for processAction", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	actingUserID, ok := middleware.GetUserIDFromCtx(c.Request.Context())
	if !ok {
		logger.Error("Acting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	instance, err := h.workflowService.ProcessAction(c.Request.Context(), actionID, actingUserID, *actionReq.Approve, actionReq.Notes)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to process workflow action")
		return
	}

	logger.Info("Workflow action processed",
		slog.String("action_id", actionID),
		slog.String("instance_id", instance.InstanceID),
		slog.Bool("approved", *actionReq.Approve))
	c.JSON(http.StatusOK, instance)
}

// getInstance retrieves a workflow instance with its actions.
func (h *workflowHandler) getInstance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	instanceID := c.Param("instanceID")

	instance, err := h.workflowService.GetInstanceByID(c.Request.Context(), instanceID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve workflow instance")
		return
	}

	c.JSON(http.StatusOK, instance)
}

// registerWorkflowRoutes registers workflow specific routes.
func registerWorkflowRoutes(group *gin.RouterGroup, workflowService portssvc.WorkflowSvcFacade) {
	workflowHandler := newWorkflowHandler(workflowService)

	workflow := group.Group("/workflow")
	{
		workflow.POST("/actions/:actionID", workflowHandler.processAction)
		workflow.GET("/instances/:instanceID", workflowHandler.getInstance)
	}
}
