package repositories

import (
	portssvc "github.com/fincore/backoffice/internal/core/ports/services"
)

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	AccountRepo  AccountRepositoryFacade
	JournalRepo  JournalEntryRepositoryFacade
	WorkflowRepo WorkflowRepositoryFacade
	CompoundRepo CompoundJournalRepositoryFacade
	SettingsRepo SettingsRepositoryFacade
	Notifier     portssvc.Notifier
	Directory    portssvc.UserDirectory
}
