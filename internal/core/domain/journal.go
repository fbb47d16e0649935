package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryStatus indicates the state of a journal entry.
type EntryStatus string

const (
	Draft     EntryStatus = "DRAFT"
	Posted    EntryStatus = "POSTED"
	Cancelled EntryStatus = "CANCELLED"
)

// JournalEntry represents a single, balanced financial event composed of
// multiple lines. Created once by the posting engine and immutable afterward.
type JournalEntry struct {
	EntryID     string          `json:"entryID"`     // Primary Key (UUID)
	EntryNumber string          `json:"entryNumber"` // Sequential document number, JE<year><seq>
	EntryDate   time.Time       `json:"entryDate"`
	Description string          `json:"description"`
	Reference   *string         `json:"reference,omitempty"` // Optional external reference
	BranchID    string          `json:"branchID"`
	Status      EntryStatus     `json:"status"`
	TotalDebit  decimal.Decimal `json:"totalDebit"`
	TotalCredit decimal.Decimal `json:"totalCredit"`
	Lines       []JournalLine   `json:"lines,omitempty"`
	AuditFields
}

// JournalLine is a single line item within a JournalEntry, affecting one
// account. Exactly one of Debit/Credit is non-zero by convention; both >= 0.
type JournalLine struct {
	LineID       string          `json:"lineID"`
	EntryID      string          `json:"entryID"`
	AccountID    string          `json:"accountID"`
	CostCenterID *string         `json:"costCenterID,omitempty"`
	Debit        decimal.Decimal `json:"debit"`
	Credit       decimal.Decimal `json:"credit"`
	Description  string          `json:"description"`
	Reference    *string         `json:"reference,omitempty"`
}
