package einvoice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jetpos/jetpos-api/internal/domain/einvoice"
	"github.com/jetpos/jetpos-api/internal/domain/entity"
)

func TestReconcile_FailureMarkers(t *testing.T) {
	inv := entity.Invoice{InvoiceNumber: "GIB2026000001", Status: entity.StatusPending}

	for _, status := range []string{"HATA", "FATURA GEÇERSİZ - ŞEMA HATASI", "GEÇERSİZ"} {
		out := einvoice.Reconcile(inv, einvoice.StatusFields{Status: status})
		assert.Equal(t, entity.StatusFailed, out.Status, "status %q must map to failed", status)
	}

	// Anything without a failure marker is sent; confirmation is implied by
	// the absence of failure.
	for _, status := range []string{"", "ONAYLANDI", "GIB'E GONDERILDI", "BILINMIYOR"} {
		out := einvoice.Reconcile(inv, einvoice.StatusFields{Status: status})
		assert.Equal(t, entity.StatusSent, out.Status, "status %q must map to sent", status)
	}
}

func TestReconcile_NumberUpgradeIsOneDirectional(t *testing.T) {
	provisional := entity.Invoice{InvoiceNumber: "EP-1735689600", Status: entity.StatusPending}

	// Provisional -> canonical: overwritten.
	out := einvoice.Reconcile(provisional, einvoice.StatusFields{DocumentNumber: "EAA2026000000042"})
	assert.Equal(t, "EAA2026000000042", out.InvoiceNumber)

	// Canonical -> provisional: never downgraded.
	canonical := out
	out = einvoice.Reconcile(canonical, einvoice.StatusFields{DocumentNumber: "EP-9999999999"})
	assert.Equal(t, "EAA2026000000042", out.InvoiceNumber)

	// Canonical -> different canonical: the stored number also stays; only
	// provisional numbers are upgraded.
	out = einvoice.Reconcile(canonical, einvoice.StatusFields{DocumentNumber: "EAA2026000000099"})
	assert.Equal(t, "EAA2026000000042", out.InvoiceNumber)

	// A provisional response number never replaces a provisional stored one.
	out = einvoice.Reconcile(provisional, einvoice.StatusFields{DocumentNumber: "EARSIV_PENDING"})
	assert.Equal(t, "EP-1735689600", out.InvoiceNumber)
}

func TestReconcile_ArtifactAndETTN(t *testing.T) {
	inv := entity.Invoice{
		InvoiceNumber: "GIB2026000001",
		PdfURL:        "https://old.example/doc.pdf",
	}

	out := einvoice.Reconcile(inv, einvoice.StatusFields{
		PdfURL: "https://portal.example/fatura/42.pdf",
		ETTN:   "a43a67c5-0a49-4d55-8f51-6a2b7d1f9c01",
	})
	assert.Equal(t, "https://portal.example/fatura/42.pdf", out.PdfURL)
	assert.Equal(t, "a43a67c5-0a49-4d55-8f51-6a2b7d1f9c01", out.ETTN)

	// No URL in the response keeps the stored artifact.
	out = einvoice.Reconcile(inv, einvoice.StatusFields{Status: "ONAYLANDI"})
	assert.Equal(t, "https://old.example/doc.pdf", out.PdfURL)

	// A stored ETTN is never replaced.
	withETTN := out
	withETTN.ETTN = "11111111-1111-1111-1111-111111111111"
	out = einvoice.Reconcile(withETTN, einvoice.StatusFields{ETTN: "22222222-2222-2222-2222-222222222222"})
	assert.Equal(t, "11111111-1111-1111-1111-111111111111", out.ETTN)
}

// The caller holds the record by value; Reconcile must not mutate its input.
func TestReconcile_DoesNotMutateInput(t *testing.T) {
	inv := entity.Invoice{InvoiceNumber: "EP-123", Status: entity.StatusPending}
	_ = einvoice.Reconcile(inv, einvoice.StatusFields{DocumentNumber: "EAA2026000000042", Status: "HATA"})
	assert.Equal(t, "EP-123", inv.InvoiceNumber)
	assert.Equal(t, entity.StatusPending, inv.Status)
}
