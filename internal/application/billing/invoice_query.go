package billing

import (
	"github.com/jetpos/jetpos-api/internal/application/dto"
	"github.com/jetpos/jetpos-api/internal/domain/repository"
)

// InvoiceQueryUseCase read-only listing of the local invoice ledger.
type InvoiceQueryUseCase struct {
	repo repository.InvoiceRepository
}

// NewInvoiceQueryUseCase builds the use case.
func NewInvoiceQueryUseCase(repo repository.InvoiceRepository) *InvoiceQueryUseCase {
	return &InvoiceQueryUseCase{repo: repo}
}

// List pages the invoices of the tenant, newest first.
func (uc *InvoiceQueryUseCase) List(tenantID string, limit, offset int) ([]*dto.InvoiceSummaryResponse, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	invoices, err := uc.repo.ListByTenant(tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.InvoiceSummaryResponse, len(invoices))
	for i, inv := range invoices {
		out[i] = &dto.InvoiceSummaryResponse{
			ID:            inv.ID,
			InvoiceNumber: inv.InvoiceNumber,
			CustomerID:    inv.CustomerID,
			Date:          inv.Date.Format("2006-01-02"),
			NetTotal:      inv.NetTotal,
			VatTotal:      inv.VatTotal,
			GrandTotal:    inv.GrandTotal,
			Status:        inv.Status,
			IsEArchive:    inv.IsEArchive,
			PdfURL:        inv.PdfURL,
		}
	}
	return out, nil
}
