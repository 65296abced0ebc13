package billing

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jetpos/jetpos-api/internal/application/dto"
	"github.com/jetpos/jetpos-api/internal/domain"
	"github.com/jetpos/jetpos-api/internal/domain/einvoice"
	"github.com/jetpos/jetpos-api/internal/domain/entity"
	"github.com/jetpos/jetpos-api/internal/domain/repository"
	"github.com/jetpos/jetpos-api/internal/infrastructure/qnb"
	"github.com/jetpos/jetpos-api/pkg/logger"
)

// SendInvoiceUseCase drives the outbound flow: build the draft, resolve the
// tenant gateway credentials, submit, persist the outcome.
type SendInvoiceUseCase struct {
	invoiceRepo  repository.InvoiceRepository
	customerRepo repository.CustomerRepository
	tenantRepo   repository.TenantRepository
	gateway      Gateway
	fallback     qnb.Config
	fallbackTest bool
	supplierName string
	log          *logger.Logger
}

// NewSendInvoiceUseCase builds the use case. fallback carries the
// process-level gateway credentials used when the tenant has none of its own.
func NewSendInvoiceUseCase(
	invoiceRepo repository.InvoiceRepository,
	customerRepo repository.CustomerRepository,
	tenantRepo repository.TenantRepository,
	gateway Gateway,
	fallback qnb.Config,
	fallbackTest bool,
	supplierName string,
	log *logger.Logger,
) *SendInvoiceUseCase {
	return &SendInvoiceUseCase{
		invoiceRepo:  invoiceRepo,
		customerRepo: customerRepo,
		tenantRepo:   tenantRepo,
		gateway:      gateway,
		fallback:     fallback,
		fallbackTest: fallbackTest,
		supplierName: supplierName,
		log:          log,
	}
}

// Send submits one invoice. The gateway outcome is the source of truth: when
// the submission succeeded but the local write fails, the response still
// reports success and the discrepancy is logged for reconciliation.
func (uc *SendInvoiceUseCase) Send(ctx context.Context, tenantID string, in dto.SendInvoiceRequest) (*dto.SendInvoiceResponse, error) {
	customer, err := uc.resolveCustomer(tenantID, in)
	if err != nil {
		return nil, err
	}
	if len(in.Lines) == 0 {
		return nil, &qnb.ValidationError{Field: "lines", Reason: "must not be empty"}
	}

	cfg, err := uc.resolveConfig(tenantID)
	if err != nil {
		return nil, err
	}

	service := uc.classify(in, customer)

	draft := qnb.Draft{
		InvoiceNumber: in.InvoiceNumber,
		Service:       service,
		Supplier:      qnb.Party{Name: uc.supplierName},
		Customer: qnb.Party{
			TaxID:   customer.TaxID,
			Name:    customer.Name,
			Address: customer.Address,
			City:    customer.City,
		},
		Note:  in.Note,
		Lines: make([]qnb.DraftLine, len(in.Lines)),
	}
	for i, l := range in.Lines {
		draft.Lines[i] = qnb.DraftLine{
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitCode:  l.UnitCode,
			UnitPrice: l.UnitPrice,
			VatRate:   l.VatRate,
		}
	}

	totals := qnb.ComputeTotals(draft.Lines)
	now := time.Now()
	inv := &entity.Invoice{
		ID:            uuid.New().String(),
		TenantID:      tenantID,
		CustomerID:    customer.ID,
		InvoiceNumber: in.InvoiceNumber,
		Date:          now,
		NetTotal:      totals.Net,
		VatTotal:      totals.Vat,
		GrandTotal:    totals.Payable,
		Status:        entity.StatusPending,
		IsEArchive:    service == einvoice.ServiceEArsiv,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	result, sendErr := uc.gateway.SendInvoice(ctx, cfg, draft, service)
	if sendErr != nil {
		inv.Status = entity.StatusFailed
		inv.LastError = sendErr.Error()
		if persistErr := uc.persist(inv, in.Lines, totals); persistErr != nil {
			uc.log.Error().Err(persistErr).Str("invoice_id", inv.ID).Msg("failed submission could not be recorded")
		}
		return nil, sendErr
	}

	inv.Status = entity.StatusSent
	inv.InvoiceNumber = result.DocumentNumber
	inv.ServiceOid = result.ListID
	inv.ETTN = result.ETTN
	inv.PdfURL = result.PdfURL
	if persistErr := uc.persist(inv, in.Lines, totals); persistErr != nil {
		// The document is already with the gateway; losing the local row must
		// not turn a delivered invoice into a reported failure.
		uc.log.Warn().Err(persistErr).
			Str("invoice_id", inv.ID).
			Str("invoice_number", inv.InvoiceNumber).
			Msg("invoice sent but local record not persisted")
	}

	return &dto.SendInvoiceResponse{
		Success:       true,
		InvoiceID:     inv.ID,
		InvoiceNumber: result.DocumentNumber,
		ListID:        result.ListID,
		ETTN:          result.ETTN,
		PdfURL:        result.PdfURL,
		Provisional:   result.Provisional,
	}, nil
}

// resolveCustomer loads the referenced customer or upserts the inline party.
func (uc *SendInvoiceUseCase) resolveCustomer(tenantID string, in dto.SendInvoiceRequest) (*entity.Customer, error) {
	if in.CustomerID != "" {
		customer, err := uc.customerRepo.GetByID(in.CustomerID)
		if err != nil {
			return nil, err
		}
		if customer == nil || customer.TenantID != tenantID {
			return nil, domain.ErrNotFound
		}
		return customer, nil
	}
	if in.Customer == nil || in.Customer.Name == "" {
		return nil, domain.ErrInvalidInput
	}

	if in.Customer.TaxID != "" {
		if existing, _ := uc.customerRepo.GetByTenantAndTaxID(tenantID, in.Customer.TaxID); existing != nil {
			return existing, nil
		}
	}
	now := time.Now()
	customer := &entity.Customer{
		ID:        uuid.New().String(),
		TenantID:  tenantID,
		Name:      in.Customer.Name,
		TaxID:     in.Customer.TaxID,
		Address:   in.Customer.Address,
		City:      in.Customer.City,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.customerRepo.Create(customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// classify picks the sub-service: an explicit flag wins, otherwise an 11-digit
// personal tax id goes to e-Archive, companies to the e-Invoice network.
func (uc *SendInvoiceUseCase) classify(in dto.SendInvoiceRequest, customer *entity.Customer) einvoice.ServiceType {
	if in.IsEArchive != nil {
		if *in.IsEArchive {
			return einvoice.ServiceEArsiv
		}
		return einvoice.ServiceEFatura
	}
	if len(customer.TaxID) == 11 {
		return einvoice.ServiceEArsiv
	}
	return einvoice.ServiceEFatura
}

func (uc *SendInvoiceUseCase) resolveConfig(tenantID string) (qnb.Config, error) {
	settings, err := uc.tenantRepo.GetSettings(tenantID)
	if err != nil {
		return qnb.Config{}, err
	}
	var qnbSettings *entity.TenantQNBSettings
	if settings != nil {
		qnbSettings = settings.QNB
	}
	return qnb.ResolveConfig(uc.fallback, uc.fallbackTest, qnbSettings), nil
}

func (uc *SendInvoiceUseCase) persist(inv *entity.Invoice, lines []dto.InvoiceLineRequest, totals qnb.Totals) error {
	if err := uc.invoiceRepo.Create(inv); err != nil {
		return err
	}
	for i, l := range lines {
		line := &entity.InvoiceLine{
			ID:        uuid.New().String(),
			InvoiceID: inv.ID,
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitCode:  l.UnitCode,
			UnitPrice: l.UnitPrice,
			VatRate:   l.VatRate,
			VatAmount: totals.Lines[i].VatAmount,
			LineTotal: totals.Lines[i].LineTotal,
		}
		if err := uc.invoiceRepo.CreateLine(line); err != nil {
			return err
		}
	}
	return nil
}
