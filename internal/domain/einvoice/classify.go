// Package einvoice holds the pure protocol decisions of the e-invoice
// integration: which QNB sub-service a document belongs to and how a polled
// status folds back into the local record. No I/O, fully deterministic.
package einvoice

import (
	"strings"

	"github.com/jetpos/jetpos-api/internal/domain/entity"
)

// ServiceType tags the QNB sub-service a document travels through.
type ServiceType string

const (
	// ServiceEFatura is the real-time e-Invoice exchange between registered taxpayers.
	ServiceEFatura ServiceType = "EFATURA"
	// ServiceEArsiv is the deferred e-Archive service for non-registered recipients.
	ServiceEArsiv ServiceType = "EARSIV"
)

// e-Archive number markers. EAA is the prefix QNB stamps on e-Archive numbers
// (EAA20260000000001); EP- is our own placeholder for unnumbered submissions.
const (
	earsivNumberPrefix = "EAA"
	earsivTagPrefix    = "EARSIV"

	// earsivLengthThreshold flags long numbers as e-Archive. This is a
	// best-effort heuristic over an unpublished numbering scheme: e-Archive
	// numbers are usually 16+ characters while e-Invoice numbers are 16 at
	// most in practice. Do not tighten without a confirmed gateway rule.
	earsivLengthThreshold = 15
)

// Classify decides which sub-service to query for an invoice record.
//
// Precedence, fixed and covered by tests:
//  1. the explicit IsEArchive flag on the record,
//  2. a provisional EP- number, an EARSIV* tag, or QNB's EAA prefix,
//  3. a number longer than the e-Archive length threshold,
//  4. otherwise e-Invoice.
func Classify(inv *entity.Invoice) ServiceType {
	if inv.IsEArchive {
		return ServiceEArsiv
	}
	number := DocumentNumber(inv)
	switch {
	case strings.HasPrefix(number, entity.ProvisionalPrefix),
		strings.HasPrefix(number, earsivTagPrefix),
		strings.HasPrefix(number, earsivNumberPrefix),
		len(number) > earsivLengthThreshold:
		return ServiceEArsiv
	}
	return ServiceEFatura
}

// DocumentNumber returns the identifier to query the gateway with: the
// service-assigned oid when present, the stored invoice number otherwise.
func DocumentNumber(inv *entity.Invoice) string {
	if inv.ServiceOid != "" {
		return inv.ServiceOid
	}
	return inv.InvoiceNumber
}

// IsProvisional reports whether a document number is still a placeholder
// awaiting the canonical gateway-assigned number.
func IsProvisional(number string) bool {
	return strings.HasPrefix(number, entity.ProvisionalPrefix) ||
		strings.HasPrefix(number, entity.PendingArchivePrefix)
}
