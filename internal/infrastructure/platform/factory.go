package platform

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ledgerbridge/booksync/internal/config"
	"github.com/ledgerbridge/booksync/internal/domain/connector"
	domain "github.com/ledgerbridge/booksync/internal/domain/platform"
	"github.com/ledgerbridge/booksync/internal/infrastructure/platform/quickbooks"
	"github.com/ledgerbridge/booksync/internal/infrastructure/platform/xero"
)

// Factory resolves platform connectors. Connectors are stateless apart
// from credentials, so each is built once and shared.
type Factory struct {
	quickbooks *quickbooks.Connector
	xero       *xero.Connector
}

// NewFactory creates the connector set from the service configuration.
func NewFactory(cfg *config.Config, logger *zap.Logger) *Factory {
	return &Factory{
		quickbooks: quickbooks.NewConnector(cfg.Service.QuickBooks, logger),
		xero:       xero.NewConnector(cfg.Service.Xero, logger),
	}
}

// Resolve returns the connector for a platform.
func (f *Factory) Resolve(p domain.Platform) (connector.Connector, error) {
	switch p {
	case domain.PlatformQuickBooks:
		return f.quickbooks, nil
	case domain.PlatformXero:
		return f.xero, nil
	default:
		return nil, fmt.Errorf("unsupported platform: %s", p)
	}
}
