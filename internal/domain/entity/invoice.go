package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice delivery states against the QNB gateway.
// There is no separate "confirmed" terminal state: the gateway contract only
// distinguishes failure; anything polled without a failure marker stays SENT.
const (
	StatusDraft   = "draft"   // persisted locally, not yet transmitted
	StatusPending = "pending" // handed to the gateway, no status poll yet
	StatusSent    = "sent"    // accepted (or at least not rejected) by the gateway
	StatusFailed  = "failed"  // rejected or reported invalid by the gateway
)

// Provisional document-number markers. The gateway may assign the canonical
// number asynchronously; until then the record carries one of these prefixes.
const (
	ProvisionalPrefix    = "EP-"            // locally generated placeholder
	PendingArchivePrefix = "EARSIV_PENDING" // e-Archive awaiting numbering
)

// Invoice is the persisted header of an outbound invoice.
type Invoice struct {
	ID            string
	TenantID      string
	CustomerID    string
	InvoiceNumber string // service-assigned number, possibly provisional (EP-...)
	ServiceOid    string // document list id returned by belgeGonderExt (belgeOid)
	ETTN          string // universally unique transaction id of the document
	Date          time.Time
	NetTotal      decimal.Decimal
	VatTotal      decimal.Decimal
	GrandTotal    decimal.Decimal
	Status        string // see Status* constants
	IsEArchive    bool   // explicit sub-service tag; wins over number heuristics
	PdfURL        string // artifact URL returned by the gateway (may be a data: URL)
	LastError     string // last rejection detail, verbatim, for support escalation
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// InvoiceLine is one billed item. Lines are free-form: the back office bills
// marketplace orders whose items are not local product records.
type InvoiceLine struct {
	ID        string
	InvoiceID string
	Name      string
	Quantity  decimal.Decimal
	UnitCode  string // UN/ECE code, C62 when the caller gives none
	UnitPrice decimal.Decimal
	VatRate   decimal.Decimal // percent, e.g. 20
	VatAmount decimal.Decimal
	LineTotal decimal.Decimal
}
