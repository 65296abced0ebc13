package billing

import (
	"context"
	"time"

	"github.com/jetpos/jetpos-api/internal/application/dto"
	"github.com/jetpos/jetpos-api/internal/domain"
	"github.com/jetpos/jetpos-api/internal/domain/einvoice"
	"github.com/jetpos/jetpos-api/internal/domain/entity"
	"github.com/jetpos/jetpos-api/internal/domain/repository"
	"github.com/jetpos/jetpos-api/internal/infrastructure/qnb"
	"github.com/jetpos/jetpos-api/pkg/logger"
)

// CheckStatusUseCase polls the gateway for an invoice and reconciles the
// local record with the reported state.
type CheckStatusUseCase struct {
	invoiceRepo  repository.InvoiceRepository
	tenantRepo   repository.TenantRepository
	gateway      Gateway
	fallback     qnb.Config
	fallbackTest bool
	log          *logger.Logger
}

// NewCheckStatusUseCase builds the use case.
func NewCheckStatusUseCase(
	invoiceRepo repository.InvoiceRepository,
	tenantRepo repository.TenantRepository,
	gateway Gateway,
	fallback qnb.Config,
	fallbackTest bool,
	log *logger.Logger,
) *CheckStatusUseCase {
	return &CheckStatusUseCase{
		invoiceRepo:  invoiceRepo,
		tenantRepo:   tenantRepo,
		gateway:      gateway,
		fallback:     fallback,
		fallbackTest: fallbackTest,
		log:          log,
	}
}

// Check loads the invoice, queries the owning sub-service and persists
// whatever changed. Drafts never reached the gateway, so they answer locally.
func (uc *CheckStatusUseCase) Check(ctx context.Context, tenantID, invoiceID string) (*dto.InvoiceStatusResponse, error) {
	inv, err := uc.invoiceRepo.GetByID(invoiceID)
	if err != nil {
		return nil, err
	}
	if inv == nil || inv.TenantID != tenantID {
		return nil, domain.ErrNotFound
	}
	if inv.Status == entity.StatusDraft {
		return toStatusResponse(inv, ""), nil
	}

	settings, err := uc.tenantRepo.GetSettings(tenantID)
	if err != nil {
		return nil, err
	}
	var qnbSettings *entity.TenantQNBSettings
	if settings != nil {
		qnbSettings = settings.QNB
	}
	cfg := qnb.ResolveConfig(uc.fallback, uc.fallbackTest, qnbSettings)

	service := einvoice.Classify(inv)
	result, err := uc.gateway.CheckStatus(ctx, cfg, einvoice.DocumentNumber(inv), inv.ETTN, service)
	if err != nil {
		return nil, err
	}

	updated := einvoice.Reconcile(*inv, einvoice.StatusFields{
		Status:         result.Status,
		DocumentNumber: result.DocumentNumber,
		ETTN:           result.ETTN,
		PdfURL:         result.PdfURL,
	})
	if updated.Status == entity.StatusFailed {
		updated.LastError = result.Status
	}
	if updated != *inv {
		updated.UpdatedAt = time.Now()
		if err := uc.invoiceRepo.Update(&updated); err != nil {
			uc.log.Warn().Err(err).Str("invoice_id", inv.ID).Msg("status reconciled but not persisted")
		}
	}

	return toStatusResponse(&updated, result.Status), nil
}

func toStatusResponse(inv *entity.Invoice, gatewayStatus string) *dto.InvoiceStatusResponse {
	return &dto.InvoiceStatusResponse{
		InvoiceID:     inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		Status:        inv.Status,
		GatewayStatus: gatewayStatus,
		ETTN:          inv.ETTN,
		PdfURL:        inv.PdfURL,
		LastError:     inv.LastError,
	}
}
