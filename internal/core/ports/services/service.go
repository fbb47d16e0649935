package services

// ServiceContainer holds all service interfaces needed by the HTTP layer.
// This makes passing dependencies to route registration cleaner.
type ServiceContainer struct {
	Ledger     LedgerSvcFacade
	Workflow   WorkflowSvcFacade
	Compound   CompoundJournalSvcFacade
	Finalizers FinalizerRegistry
}
