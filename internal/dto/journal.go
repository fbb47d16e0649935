package dto

import (
	"time"

	"github.com/fincore/backoffice/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateJournalLineRequest is one line of a create-entry request.
type CreateJournalLineRequest struct {
	AccountID    string          `json:"accountID" binding:"required"`
	CostCenterID *string         `json:"costCenterID"`
	Debit        decimal.Decimal `json:"debit"`
	Credit       decimal.Decimal `json:"credit"`
	Description  string          `json:"description"`
	Reference    *string         `json:"reference"`
}

// CreateJournalEntryRequest is the input to the ledger posting engine.
// Number, when supplied, is used verbatim instead of generating one.
type CreateJournalEntryRequest struct {
	Date        time.Time                  `json:"date" binding:"required"`
	Description string                     `json:"description"`
	BranchID    string                     `json:"branchID" binding:"required"`
	Reference   *string                    `json:"reference"`
	Number      *string                    `json:"number"`
	Status      domain.EntryStatus         `json:"status"`
	Lines       []CreateJournalLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// JournalLineResponse mirrors a persisted journal line.
type JournalLineResponse struct {
	LineID       string          `json:"lineID"`
	AccountID    string          `json:"accountID"`
	CostCenterID *string         `json:"costCenterID,omitempty"`
	Debit        decimal.Decimal `json:"debit"`
	Credit       decimal.Decimal `json:"credit"`
	Description  string          `json:"description"`
	Reference    *string         `json:"reference,omitempty"`
}

// JournalEntryResponse mirrors a persisted journal entry.
type JournalEntryResponse struct {
	EntryID     string                `json:"entryID"`
	EntryNumber string                `json:"entryNumber"`
	Date        time.Time             `json:"date"`
	Description string                `json:"description"`
	Reference   *string               `json:"reference,omitempty"`
	BranchID    string                `json:"branchID"`
	Status      domain.EntryStatus    `json:"status"`
	TotalDebit  decimal.Decimal       `json:"totalDebit"`
	TotalCredit decimal.Decimal       `json:"totalCredit"`
	Lines       []JournalLineResponse `json:"lines,omitempty"`
	CreatedAt   time.Time             `json:"createdAt"`
	CreatedBy   string                `json:"createdBy"`
}

// ToJournalEntryResponse converts a domain entry to its response shape.
func ToJournalEntryResponse(e *domain.JournalEntry) JournalEntryResponse {
	lines := make([]JournalLineResponse, len(e.Lines))
	for i, l := range e.Lines {
		lines[i] = JournalLineResponse{
			LineID:       l.LineID,
			AccountID:    l.AccountID,
			CostCenterID: l.CostCenterID,
			Debit:        l.Debit,
			Credit:       l.Credit,
			Description:  l.Description,
			Reference:    l.Reference,
		}
	}
	return JournalEntryResponse{
		EntryID:     e.EntryID,
		EntryNumber: e.EntryNumber,
		Date:        e.EntryDate,
		Description: e.Description,
		Reference:   e.Reference,
		BranchID:    e.BranchID,
		Status:      e.Status,
		TotalDebit:  e.TotalDebit,
		TotalCredit: e.TotalCredit,
		Lines:       lines,
		CreatedAt:   e.CreatedAt,
		CreatedBy:   e.CreatedBy,
	}
}

// ListJournalEntriesParams holds token-paginated list parameters.
type ListJournalEntriesParams struct {
	Limit     int     `form:"limit"`
	NextToken *string `form:"nextToken"`
}

// ListJournalEntriesResponse is a page of entries plus the next token.
type ListJournalEntriesResponse struct {
	Entries   []JournalEntryResponse `json:"entries"`
	NextToken *string                `json:"nextToken,omitempty"`
}
