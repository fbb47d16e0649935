package repositories

import (
	"context"

	"github.com/fincore/backoffice/internal/core/domain"
)

// AccountRepositoryFacade defines the read surface of the account store the
// posting engine depends on. Balance mutation happens inside the journal
// repository's transaction.
type AccountRepositoryFacade interface {
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)
	// FindAccountsByIDs returns the accounts found, keyed by ID. Missing IDs
	// are simply absent from the map.
	FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)
}
