package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/fincore/backoffice/internal/core/ports/services"
	"github.com/fincore/backoffice/internal/dto"
	"github.com/fincore/backoffice/internal/middleware"
)

// compoundHandler handles HTTP requests for compound journal definitions.
type compoundHandler struct {
	compoundService portssvc.CompoundJournalSvcFacade
}

// newCompoundHandler creates a new compoundHandler.
func newCompoundHandler(compoundService portssvc.CompoundJournalSvcFacade) *compoundHandler {
	return &compoundHandler{
		compoundService: compoundService,
	}
}

// createDefinition creates a new compound journal definition.
func (h *compoundHandler) createDefinition(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	createReq := dto.CreateCompoundDefinitionRequest{}
	if err := c.ShouldBindJSON(&createReq); err != nil {
		logger.Error("Failed to bind JSON for createDefinition", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromCtx(c.Request.Context())
	if !ok {
		logger.Error("Creator user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	def, err := h.compoundService.CreateDefinition(c.Request.Context(), createReq, creatorUserID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to create compound definition")
		return
	}

	logger.Info("Compound definition created", slog.String("definition_id", def.DefinitionID), slog.String("name", def.Name))
	c.JSON(http.StatusCreated, def)
}

// updateDefinition updates the mutable fields of a definition. Nil fields in
// the request are left unchanged.
func (h *compoundHandler) updateDefinition(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	definitionID := c.Param("definitionID")

	updateReq := dto.UpdateCompoundDefinitionRequest{}
	if err := c.ShouldBindJSON(&updateReq); err != nil {
		logger.Error("Failed to bind JSON for updateDefinition", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	updaterUserID, ok := middleware.GetUserIDFromCtx(c.Request.Context())
	if !ok {
		logger.Error("Updater user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	def, err := h.compoundService.UpdateDefinition(c.Request.Context(), definitionID, updateReq, updaterUserID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to update compound definition")
		return
	}

	c.JSON(http.StatusOK, def)
}

// getDefinition retrieves a definition by its ID.
func (h *compoundHandler) getDefinition(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	definitionID := c.Param("definitionID")

	def, err := h.compoundService.GetDefinitionByID(c.Request.Context(), definitionID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve compound definition")
		return
	}

	c.JSON(http.StatusOK, def)
}

// executeDefinition triggers one manual execution of a definition. A skipped
// execution is reported as a success with no journal entry.
func (h *compoundHandler) executeDefinition(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	definitionID := c.Param("definitionID")

	execReq := dto.ExecuteCompoundRequest{}
	if err := c.ShouldBindJSON(&execReq); err != nil {
		logger.Error("Failed to bind JSON for executeDefinition", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	execReq.IsAutomatic = false

	actingUserID, ok := middleware.GetUserIDFromCtx(c.Request.Context())
	if !ok {
		logger.Error("Acting user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	result, err := h.compoundService.Execute(c.Request.Context(), definitionID, execReq, actingUserID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to execute compound definition")
		return
	}

	logger.Info("Compound definition executed",
		slog.String("definition_id", definitionID),
		slog.String("status", string(result.Status)))
	c.JSON(http.StatusOK, result)
}

// listExecutionLogs returns a token-paginated page of execution logs, newest
// first.
func (h *compoundHandler) listExecutionLogs(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	definitionID := c.Param("definitionID")

	params := dto.ListExecutionLogsParams{}
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Error("Failed to bind query for listExecutionLogs", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	page, err := h.compoundService.ListExecutionLogs(c.Request.Context(), definitionID, params)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list execution logs")
		return
	}

	c.JSON(http.StatusOK, page)
}

// registerCompoundRoutes registers compound journal specific routes.
func registerCompoundRoutes(group *gin.RouterGroup, compoundService portssvc.CompoundJournalSvcFacade) {
	compoundHandler := newCompoundHandler(compoundService)

	compound := group.Group("/compound-journals")
	{
		compound.POST("", compoundHandler.createDefinition)
		compound.GET("/:definitionID", compoundHandler.getDefinition)
		compound.PUT("/:definitionID", compoundHandler.updateDefinition)
		compound.POST("/:definitionID/execute", compoundHandler.executeDefinition)
		compound.GET("/:definitionID/logs", compoundHandler.listExecutionLogs)
	}
}
