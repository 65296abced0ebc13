package einvoice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jetpos/jetpos-api/internal/domain/einvoice"
	"github.com/jetpos/jetpos-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Classify is a pure function of the stored flag, the number prefix and the
// number length. The precedence order is part of the contract with the status
// endpoint, so every branch gets its own vector here.
// ──────────────────────────────────────────────────────────────────────────────

func TestClassify_Precedence(t *testing.T) {
	cases := []struct {
		name string
		inv  entity.Invoice
		want einvoice.ServiceType
	}{
		{
			name: "explicit flag wins over a short e-invoice looking number",
			inv:  entity.Invoice{IsEArchive: true, InvoiceNumber: "GIB2026000001"},
			want: einvoice.ServiceEArsiv,
		},
		{
			name: "provisional EP- prefix",
			inv:  entity.Invoice{InvoiceNumber: "EP-1735689600"},
			want: einvoice.ServiceEArsiv,
		},
		{
			name: "EARSIV pending tag",
			inv:  entity.Invoice{InvoiceNumber: "EARSIV_PENDING"},
			want: einvoice.ServiceEArsiv,
		},
		{
			name: "QNB EAA numbering",
			inv:  entity.Invoice{InvoiceNumber: "EAA2026000000001"},
			want: einvoice.ServiceEArsiv,
		},
		{
			name: "length threshold catches unprefixed long numbers",
			inv:  entity.Invoice{InvoiceNumber: "X123456789012345Z"},
			want: einvoice.ServiceEArsiv,
		},
		{
			name: "short plain number is e-invoice",
			inv:  entity.Invoice{InvoiceNumber: "GIB2026000001"},
			want: einvoice.ServiceEFatura,
		},
		{
			name: "service oid takes precedence over invoice number",
			inv:  entity.Invoice{ServiceOid: "EP-1735689600", InvoiceNumber: "GIB2026000001"},
			want: einvoice.ServiceEArsiv,
		},
		{
			name: "empty record defaults to e-invoice",
			inv:  entity.Invoice{},
			want: einvoice.ServiceEFatura,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := einvoice.Classify(&tc.inv)
			assert.Equal(t, tc.want, got)

			// Determinism: same record, same answer.
			assert.Equal(t, got, einvoice.Classify(&tc.inv))
		})
	}
}

func TestIsProvisional(t *testing.T) {
	assert.True(t, einvoice.IsProvisional("EP-1735689600"))
	assert.True(t, einvoice.IsProvisional("EARSIV_PENDING"))
	assert.False(t, einvoice.IsProvisional("EAA2026000000001"))
	assert.False(t, einvoice.IsProvisional("GIB2026000001"))
	assert.False(t, einvoice.IsProvisional(""))
}
