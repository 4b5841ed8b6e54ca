package services

// ServiceContainer holds instances of all the application services. It is the
// entry point external command handlers use to reach the ledger core.
type ServiceContainer struct {
	Journal   JournalSvcFacade
	Numbering NumberingService
}
