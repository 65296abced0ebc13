package dto

import "github.com/shopspring/decimal"

// CreateCustomerRequest body for POST /api/customers.
type CreateCustomerRequest struct {
	Name    string `json:"name"`
	TaxID   string `json:"tax_id"`
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

// UpdateCustomerRequest body for PUT /api/customers/:id. Empty fields keep
// their current value.
type UpdateCustomerRequest struct {
	Name    string `json:"name,omitempty"`
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

// CustomerResponse customer in responses.
type CustomerResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	TaxID   string `json:"tax_id"`
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

// SendInvoiceRequest body for POST /api/invoices/send. Customer data may come
// inline (marketplace orders) or by reference to a stored customer.
type SendInvoiceRequest struct {
	CustomerID    string               `json:"customer_id,omitempty"`
	Customer      *InvoicePartyRequest `json:"customer,omitempty"`
	InvoiceNumber string               `json:"invoice_number,omitempty"` // optional, gateway assigns one when empty
	IsEArchive    *bool                `json:"is_e_archive,omitempty"`   // nil = classify from the customer tax id
	Note          string               `json:"note,omitempty"`
	Lines         []InvoiceLineRequest `json:"lines"`
}

// InvoicePartyRequest inline billed party for POST /api/invoices/send.
type InvoicePartyRequest struct {
	Name    string `json:"name"`
	TaxID   string `json:"tax_id"`
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
}

// InvoiceLineRequest one billed item.
type InvoiceLineRequest struct {
	Name      string          `json:"name"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitCode  string          `json:"unit_code,omitempty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	VatRate   decimal.Decimal `json:"vat_rate"`
}

// SendInvoiceResponse outcome of a send. Success refers to the gateway
// submission; the local record id always comes back for follow-up polling.
type SendInvoiceResponse struct {
	Success       bool   `json:"success"`
	InvoiceID     string `json:"invoice_id"`
	InvoiceNumber string `json:"invoice_number,omitempty"`
	ListID        string `json:"listId,omitempty"`
	ETTN          string `json:"ettn,omitempty"`
	PdfURL        string `json:"pdfUrl,omitempty"`
	Provisional   bool   `json:"provisional,omitempty"`
}

// InvoiceStatusResponse body for GET /api/invoices/status/:id.
type InvoiceStatusResponse struct {
	InvoiceID     string `json:"invoice_id"`
	InvoiceNumber string `json:"invoice_number"`
	Status        string `json:"status"` // draft|pending|sent|failed
	GatewayStatus string `json:"gateway_status,omitempty"`
	ETTN          string `json:"ettn,omitempty"`
	PdfURL        string `json:"pdfUrl,omitempty"`
	LastError     string `json:"last_error,omitempty"`
}

// InvoiceSummaryResponse one row of GET /api/invoices.
type InvoiceSummaryResponse struct {
	ID            string          `json:"id"`
	InvoiceNumber string          `json:"invoice_number"`
	CustomerID    string          `json:"customer_id,omitempty"`
	Date          string          `json:"date"`
	NetTotal      decimal.Decimal `json:"net_total"`
	VatTotal      decimal.Decimal `json:"vat_total"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
	Status        string          `json:"status"`
	IsEArchive    bool            `json:"is_e_archive"`
	PdfURL        string          `json:"pdfUrl,omitempty"`
}
