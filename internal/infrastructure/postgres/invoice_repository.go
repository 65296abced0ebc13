package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jetpos/jetpos-api/internal/domain/entity"
	"github.com/jetpos/jetpos-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implements InvoiceRepository (usable with pool or tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository builds the adapter. Pass a pool or a tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

// Create persists the invoice header.
func (r *InvoiceRepo) Create(invoice *entity.Invoice) error {
	if invoice.ID == "" {
		invoice.ID = uuid.New().String()
	}
	query := `
		INSERT INTO invoices (id, tenant_id, customer_id, invoice_number, service_oid, ettn, date,
		                      net_total, vat_total, grand_total, status, is_e_archive, pdf_url, last_error,
		                      created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.q.Exec(context.Background(), query,
		invoice.ID, invoice.TenantID, nullIfEmpty(invoice.CustomerID),
		nullIfEmpty(invoice.InvoiceNumber), nullIfEmpty(invoice.ServiceOid), nullIfEmpty(invoice.ETTN),
		invoice.Date, invoice.NetTotal, invoice.VatTotal, invoice.GrandTotal,
		invoice.Status, invoice.IsEArchive, nullIfEmpty(invoice.PdfURL), nullIfEmpty(invoice.LastError),
		invoice.CreatedAt, invoice.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("invoice number already exists: %w", err)
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// CreateLine persists one billed item.
func (r *InvoiceRepo) CreateLine(line *entity.InvoiceLine) error {
	if line.ID == "" {
		line.ID = uuid.New().String()
	}
	query := `
		INSERT INTO invoice_lines (id, invoice_id, name, quantity, unit_code, unit_price, vat_rate, vat_amount, line_total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(context.Background(), query,
		line.ID, line.InvoiceID, line.Name, line.Quantity, line.UnitCode,
		line.UnitPrice, line.VatRate, line.VatAmount, line.LineTotal,
	)
	if err != nil {
		return fmt.Errorf("insert invoice line: %w", err)
	}
	return nil
}

// Update writes the gateway lifecycle fields after a send or a status poll.
func (r *InvoiceRepo) Update(invoice *entity.Invoice) error {
	query := `
		UPDATE invoices
		SET invoice_number = COALESCE($2, invoice_number),
		    service_oid    = COALESCE($3, service_oid),
		    ettn           = COALESCE($4, ettn),
		    status         = $5,
		    is_e_archive   = $6,
		    pdf_url        = COALESCE($7, pdf_url),
		    last_error     = $8,
		    updated_at     = $9
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		invoice.ID,
		nullIfEmpty(invoice.InvoiceNumber),
		nullIfEmpty(invoice.ServiceOid),
		nullIfEmpty(invoice.ETTN),
		invoice.Status,
		invoice.IsEArchive,
		nullIfEmpty(invoice.PdfURL),
		invoice.LastError,
		invoice.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}
	return nil
}

// GetByID fetches one invoice header.
func (r *InvoiceRepo) GetByID(id string) (*entity.Invoice, error) {
	query := `
		SELECT id, tenant_id, customer_id, invoice_number, service_oid, ettn, date,
		       net_total, vat_total, grand_total, status, is_e_archive, pdf_url, last_error,
		       created_at, updated_at
		FROM invoices WHERE id = $1`
	inv, err := scanInvoice(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return inv, nil
}

// GetLinesByInvoiceID fetches the items of one invoice in insertion order.
func (r *InvoiceRepo) GetLinesByInvoiceID(invoiceID string) ([]*entity.InvoiceLine, error) {
	query := `
		SELECT id, invoice_id, name, quantity, unit_code, unit_price, vat_rate, vat_amount, line_total
		FROM invoice_lines WHERE invoice_id = $1 ORDER BY id`
	rows, err := r.q.Query(context.Background(), query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list invoice lines: %w", err)
	}
	defer rows.Close()

	var lines []*entity.InvoiceLine
	for rows.Next() {
		var line entity.InvoiceLine
		var unitCode *string
		if err := rows.Scan(&line.ID, &line.InvoiceID, &line.Name, &line.Quantity, &unitCode,
			&line.UnitPrice, &line.VatRate, &line.VatAmount, &line.LineTotal); err != nil {
			return nil, fmt.Errorf("scan invoice line: %w", err)
		}
		line.UnitCode = orEmpty(unitCode)
		lines = append(lines, &line)
	}
	return lines, rows.Err()
}

// ListByTenant pages the tenant's invoices, newest first.
func (r *InvoiceRepo) ListByTenant(tenantID string, limit, offset int) ([]*entity.Invoice, error) {
	query := `
		SELECT id, tenant_id, customer_id, invoice_number, service_oid, ettn, date,
		       net_total, vat_total, grand_total, status, is_e_archive, pdf_url, last_error,
		       created_at, updated_at
		FROM invoices WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, tenantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	var invoices []*entity.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

func scanInvoice(row pgx.Row) (*entity.Invoice, error) {
	var inv entity.Invoice
	var customerID, number, serviceOid, ettn, pdfURL, lastError *string
	err := row.Scan(
		&inv.ID, &inv.TenantID, &customerID, &number, &serviceOid, &ettn, &inv.Date,
		&inv.NetTotal, &inv.VatTotal, &inv.GrandTotal, &inv.Status, &inv.IsEArchive,
		&pdfURL, &lastError, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	inv.CustomerID = orEmpty(customerID)
	inv.InvoiceNumber = orEmpty(number)
	inv.ServiceOid = orEmpty(serviceOid)
	inv.ETTN = orEmpty(ettn)
	inv.PdfURL = orEmpty(pdfURL)
	inv.LastError = orEmpty(lastError)
	return &inv, nil
}
