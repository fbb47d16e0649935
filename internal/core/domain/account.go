package domain

import (
	"github.com/shopspring/decimal"
)

// AccountNature defines whether an account's normal balance increases with
// debits or with credits.
type AccountNature string

const (
	NatureDebit  AccountNature = "DEBIT"
	NatureCredit AccountNature = "CREDIT"
)

// Account represents a financial account within the ledger.
// The posting engine only reads/writes the balance and currency fields;
// account authoring is owned elsewhere.
type Account struct {
	AccountID    string          `json:"accountID"`
	Code         string          `json:"code"` // Unique account code
	Name         string          `json:"name"`
	Nature       AccountNature   `json:"nature"`
	CurrencyCode string          `json:"currencyCode"`
	BranchID     *string         `json:"branchID,omitempty"`
	IsActive     bool            `json:"isActive"`
	Balance      decimal.Decimal `json:"balance"` // Signed, same sign convention as Nature
	AuditFields
}

// NetAmount returns the signed effect a (debit, credit) pair has on this
// account's running balance given its nature.
func (a Account) NetAmount(debit, credit decimal.Decimal) decimal.Decimal {
	if a.Nature == NatureDebit {
		return debit.Sub(credit)
	}
	return credit.Sub(debit)
}
