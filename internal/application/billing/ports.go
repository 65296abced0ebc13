package billing

import (
	"context"

	"github.com/jetpos/jetpos-api/internal/domain/einvoice"
	"github.com/jetpos/jetpos-api/internal/infrastructure/qnb"
)

// Gateway is the outbound e-invoicing port. The production implementation is
// *qnb.Client; tests plug in a fake.
type Gateway interface {
	SendInvoice(ctx context.Context, cfg qnb.Config, draft qnb.Draft, service einvoice.ServiceType) (*qnb.SendResult, error)
	CheckStatus(ctx context.Context, cfg qnb.Config, documentNumber, ettn string, service einvoice.ServiceType) (*qnb.StatusResult, error)
	TestConnection(ctx context.Context, cfg qnb.Config) error
}
