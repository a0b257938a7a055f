package services

import (
	portsrepo "github.com/SscSPs/recon_workbench/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/recon_workbench/internal/core/ports/services"
	"github.com/SscSPs/recon_workbench/internal/platform/config"
	"github.com/SscSPs/recon_workbench/internal/platform/metrics"
	"github.com/SscSPs/recon_workbench/internal/utils/glparser"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, notifier portssvc.LedgerChangeNotifier, m *metrics.Metrics) *portssvc.ServiceContainer {
	parser := glparser.New(glparser.Options{DayFirst: cfg.GLDateDayFirst})

	return &portssvc.ServiceContainer{
		Ledger: NewLedgerUploadService(
			repos.LedgerRepo,
			repos.ClientRepo,
			parser,
			WithRoleAuthorizer(NewContextRoleAuthorizer()),
			WithChangeNotifier(notifier),
			WithMetrics(m),
			WithMaxUploadBytes(cfg.MaxUploadBytes),
		),
	}
}
