package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fincore/backoffice/internal/core/domain"
	portssvc "github.com/fincore/backoffice/internal/core/ports/services"
	"github.com/fincore/backoffice/internal/core/services"
	"github.com/fincore/backoffice/internal/dto"
	"github.com/fincore/backoffice/internal/middleware"
)

// journalHandler handles HTTP requests for journal entries.
type journalHandler struct {
	ledgerService   portssvc.LedgerSvcFacade
	workflowService portssvc.WorkflowSvcFacade
	finalizers      portssvc.FinalizerRegistry
}

// newJournalHandler creates a new journalHandler.
func newJournalHandler(ledgerService portssvc.LedgerSvcFacade, workflowService portssvc.WorkflowSvcFacade, finalizers portssvc.FinalizerRegistry) *journalHandler {
	return &journalHandler{
		ledgerService:   ledgerService,
		workflowService: workflowService,
		finalizers:      finalizers,
	}
}

// createEntry creates a new journal entry. Unbalanced entries are balanced
// automatically against the configured balancing account.
func (h *journalHandler) createEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	createReq := dto.CreateJournalEntryRequest{}
	if err := c.ShouldBindJSON(&createReq); err != nil {
		logger.Error("Failed to bind JSON for createEntry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromCtx(c.Request.Context())
	if !ok {
		logger.Error("Creator user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	entry, err := h.ledgerService.CreateJournalEntry(c.Request.Context(), createReq, creatorUserID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to create journal entry")
		return
	}

	logger.Info("Journal entry created", slog.String("entry_id", entry.EntryID), slog.String("entry_number", entry.EntryNumber))
	c.JSON(http.StatusCreated, dto.ToJournalEntryResponse(entry))
}

// getEntry retrieves a journal entry with its lines.
func (h *journalHandler) getEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID := c.Param("entryID")

	entry, err := h.ledgerService.GetEntryByID(c.Request.Context(), entryID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve journal entry")
		return
	}

	c.JSON(http.StatusOK, dto.ToJournalEntryResponse(entry))
}

// listEntries returns a token-paginated page of journal entries, newest first.
func (h *journalHandler) listEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	params := dto.ListJournalEntriesParams{}
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Error("Failed to bind query for listEntries", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	page, err := h.ledgerService.ListEntries(c.Request.Context(), params)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list journal entries")
		return
	}

	c.JSON(http.StatusOK, page)
}

// submitEntry routes a draft entry through the active approval workflow for
// its branch. When no workflow applies, the entry posts immediately.
func (h *journalHandler) submitEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID := c.Param("entryID")

	submitterUserID, ok := middleware.GetUserIDFromCtx(c.Request.Context())
	if !ok {
		logger.Error("Submitter user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	entry, err := h.ledgerService.GetEntryByID(c.Request.Context(), entryID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve journal entry")
		return
	}
	if entry.Status != domain.Draft {
		logger.Warn("Submit rejected for non-draft entry", slog.String("entry_id", entryID), slog.String("status", string(entry.Status)))
		c.JSON(http.StatusConflict, gin.H{"error": "Only draft entries can be submitted"})
		return
	}

	def, err := h.workflowService.GetActiveDefinition(c.Request.Context(), services.DocumentTypeJournalEntry, &entry.BranchID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to resolve approval workflow")
		return
	}

	if def != nil {
		instance, err := h.workflowService.StartWorkflow(c.Request.Context(), def, services.DocumentTypeJournalEntry, entry.EntryID, submitterUserID, &entry.BranchID)
		if err != nil {
			respondServiceError(c, logger, err, "Failed to start approval workflow")
			return
		}
		if instance != nil {
			logger.Info("Entry routed for approval", slog.String("entry_id", entryID), slog.String("instance_id", instance.InstanceID))
			c.JSON(http.StatusOK, instance)
			return
		}
	}

	// No active definition, or a definition with zero steps: post directly.
	finalizer, ok := h.finalizers[services.DocumentTypeJournalEntry]
	if !ok {
		logger.Error("No finalizer registered for journal entries")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to post journal entry"})
		return
	}
	if err := finalizer.Finalize(c.Request.Context(), entry.EntryID, submitterUserID); err != nil {
		respondServiceError(c, logger, err, "Failed to post journal entry")
		return
	}

	posted, err := h.ledgerService.GetEntryByID(c.Request.Context(), entryID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve journal entry")
		return
	}

	logger.Info("Entry posted without approval routing", slog.String("entry_id", entryID))
	c.JSON(http.StatusOK, dto.ToJournalEntryResponse(posted))
}

// RegisterJournalRoutes registers journal entry specific routes.
func RegisterJournalRoutes(group *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade, workflowService portssvc.WorkflowSvcFacade, finalizers portssvc.FinalizerRegistry) {
	journalHandler := newJournalHandler(ledgerService, workflowService, finalizers)

	entries := group.Group("/entries")
	{
		entries.POST("", journalHandler.createEntry)
		entries.GET("", journalHandler.listEntries)
		entries.GET("/:entryID", journalHandler.getEntry)
		entries.POST("/:entryID/submit", journalHandler.submitEntry)
	}
}
