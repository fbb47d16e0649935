package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/fincore/backoffice/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	accountRepo := newPgxAccountRepository(dbPool)
	journalRepo := newPgxJournalEntryRepository(dbPool)
	workflowRepo := newPgxWorkflowRepository(dbPool)
	compoundRepo := newPgxCompoundRepository(dbPool)
	settingsRepo := newPgxSettingsRepository(dbPool)
	notificationRepo := newPgxNotificationRepository(dbPool)
	directoryRepo := newPgxDirectoryRepository(dbPool)

	return portsrepo.RepositoryProvider{
		AccountRepo:  accountRepo,
		JournalRepo:  journalRepo,
		WorkflowRepo: workflowRepo,
		CompoundRepo: compoundRepo,
		SettingsRepo: settingsRepo,
		Notifier:     notificationRepo,
		Directory:    directoryRepo,
	}
}
