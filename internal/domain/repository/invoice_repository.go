package repository

import "github.com/jetpos/jetpos-api/internal/domain/entity"

// InvoiceRepository is the persistence port for Invoice and its lines.
type InvoiceRepository interface {
	Create(invoice *entity.Invoice) error
	CreateLine(line *entity.InvoiceLine) error
	// Update writes the gateway lifecycle fields: invoice_number, service_oid,
	// ettn, status, pdf_url, is_e_archive, last_error.
	Update(invoice *entity.Invoice) error
	GetByID(id string) (*entity.Invoice, error)
	GetLinesByInvoiceID(invoiceID string) ([]*entity.InvoiceLine, error)
	ListByTenant(tenantID string, limit, offset int) ([]*entity.Invoice, error)
}
