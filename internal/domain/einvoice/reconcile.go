package einvoice

import (
	"strings"

	"github.com/jetpos/jetpos-api/internal/domain/entity"
)

// Gateway status markers that mean the document was rejected. Matched as
// substrings because the gateway mixes bare codes ("HATA") with prose
// ("FATURA GEÇERSİZ - ŞEMA HATASI").
const (
	statusMarkerError   = "HATA"
	statusMarkerInvalid = "GEÇERSİZ"
)

// StatusFields is the reconciler's view of a polled gateway response: every
// field optional, already lifted out of the loosely-typed SOAP body.
type StatusFields struct {
	Status         string // durum / durumAciklamasi / resultText, may be empty
	DocumentNumber string // canonical faturaNo when the gateway has assigned one
	ETTN           string
	PdfURL         string
}

// Reconcile folds a fresh status response into the stored record and returns
// the updated copy. Rules:
//
//   - a status containing a failure or invalid marker -> StatusFailed,
//     anything else -> StatusSent (absence of failure is the only
//     confirmation the contract offers);
//   - an artifact URL in the response replaces the stored one;
//   - a canonical document number replaces a stored provisional one. The
//     upgrade is one-directional: a canonical number is never downgraded
//     back to a provisional value.
func Reconcile(inv entity.Invoice, st StatusFields) entity.Invoice {
	if strings.Contains(st.Status, statusMarkerError) || strings.Contains(st.Status, statusMarkerInvalid) {
		inv.Status = entity.StatusFailed
	} else {
		inv.Status = entity.StatusSent
	}

	if st.PdfURL != "" {
		inv.PdfURL = st.PdfURL
	}
	if st.ETTN != "" && inv.ETTN == "" {
		inv.ETTN = st.ETTN
	}

	if st.DocumentNumber != "" && !IsProvisional(st.DocumentNumber) && IsProvisional(inv.InvoiceNumber) {
		inv.InvoiceNumber = st.DocumentNumber
	}

	return inv
}
