package qnb

import (
	"regexp"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jetpos/jetpos-api/internal/domain/einvoice"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func sampleDraft() Draft {
	return Draft{
		InvoiceNumber: "JET2026000000042",
		Service:       einvoice.ServiceEFatura,
		Supplier:      Party{Name: "JetPOS Bilişim A.Ş.", City: "İstanbul"},
		Customer:      Party{TaxID: "1234567890", Name: "Örnek Ticaret Ltd."},
		Lines: []DraftLine{
			{Name: "Kahve makinesi", Quantity: dec("2"), UnitPrice: dec("50.00"), VatRate: dec("20")},
		},
	}
}

func TestComputeTotals(t *testing.T) {
	totals := ComputeTotals(sampleDraft().Lines)

	assert.Equal(t, "100.00", totals.Net.StringFixed(2))
	assert.Equal(t, "20.00", totals.Vat.StringFixed(2))
	assert.Equal(t, "120.00", totals.Payable.StringFixed(2))
	require.Len(t, totals.Lines, 1)
	assert.Equal(t, "100.00", totals.Lines[0].LineTotal.StringFixed(2))
	assert.Equal(t, "20.00", totals.Lines[0].VatAmount.StringFixed(2))
}

func TestComputeTotals_RoundingPerLine(t *testing.T) {
	// 3 x 0.335 = 1.005 rounds half-up to 1.01 before VAT is applied.
	totals := ComputeTotals([]DraftLine{
		{Name: "a", Quantity: dec("3"), UnitPrice: dec("0.335"), VatRate: dec("20")},
	})
	assert.Equal(t, "1.01", totals.Net.StringFixed(2))
	assert.Equal(t, "0.20", totals.Vat.StringFixed(2))
	assert.Equal(t, "1.21", totals.Payable.StringFixed(2))
}

func TestBuild_Metadata(t *testing.T) {
	doc, err := NewUBLBuilder().Build(sampleDraft(), "9876543210")
	require.NoError(t, err)

	xml := string(doc.XML)
	assert.Contains(t, xml, ">2.1</")
	assert.Contains(t, xml, ">TR1.2</")
	assert.Contains(t, xml, ">TICARIFATURA</")
	assert.Contains(t, xml, ">SATIS</")
	assert.Contains(t, xml, ">TRY</")
	assert.Contains(t, xml, ">JET2026000000042</")
	assert.Contains(t, xml, doc.ETTN)
	assert.Equal(t, "JET2026000000042", doc.Number)

	// Supplier identification is the tenant VKN, not draft data.
	assert.Contains(t, xml, `schemeID="VKN">9876543210<`)
}

func TestBuild_EarsivProfile(t *testing.T) {
	draft := sampleDraft()
	draft.Service = einvoice.ServiceEArsiv

	doc, err := NewUBLBuilder().Build(draft, "9876543210")
	require.NoError(t, err)
	assert.Contains(t, string(doc.XML), ">EARSIVFATURA</")
}

func TestBuild_CustomerSchemeByLength(t *testing.T) {
	tests := []struct {
		name   string
		taxID  string
		scheme string
	}{
		{"ten digit company id", "1234567890", "VKN"},
		{"eleven digit personal id", "12345678901", "TCKN"},
		{"formatted personal id", "123-456-789-01", "TCKN"},
		{"empty identifier", "", "VKN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft := sampleDraft()
			draft.Customer.TaxID = tt.taxID

			doc, err := NewUBLBuilder().Build(draft, "9876543210")
			require.NoError(t, err)
			assert.Contains(t, string(doc.XML), `schemeID="`+tt.scheme+`"`)
		})
	}
}

func TestBuild_AddressDefaults(t *testing.T) {
	doc, err := NewUBLBuilder().Build(sampleDraft(), "9876543210")
	require.NoError(t, err)

	xml := string(doc.XML)
	assert.Contains(t, xml, ">İstanbul</")
	assert.Contains(t, xml, ">Türkiye</")
}

func TestBuild_EmptyDraft(t *testing.T) {
	doc, err := NewUBLBuilder().Build(Draft{Service: einvoice.ServiceEFatura}, "9876543210")
	require.NoError(t, err)

	xml := string(doc.XML)
	assert.Contains(t, xml, ">0</") // LineCountNumeric
	assert.Contains(t, xml, ">0.00</")
	assert.True(t, strings.HasPrefix(doc.Number, "TASLAK-"))
	assert.Equal(t, "0.00", doc.Totals.Payable.StringFixed(2))
}

func TestBuild_FreshIdentityPerCall(t *testing.T) {
	b := NewUBLBuilder()
	first, err := b.Build(sampleDraft(), "9876543210")
	require.NoError(t, err)
	second, err := b.Build(sampleDraft(), "9876543210")
	require.NoError(t, err)

	assert.NotEqual(t, first.ETTN, second.ETTN)
	assert.Equal(t, first.Number, second.Number)
	assert.True(t, first.Totals.Payable.Equal(second.Totals.Payable))

	// With the ETTN and the issue timestamp masked out, the two documents
	// must be byte-identical.
	assert.Equal(t, maskIdentity(first), maskIdentity(second))
}

var issueStampRe = regexp.MustCompile(`<(IssueDate|IssueTime)([^>]*)>[^<]*<`)

func maskIdentity(doc *Document) string {
	s := strings.ReplaceAll(string(doc.XML), doc.ETTN, "MASKED-ETTN")
	return issueStampRe.ReplaceAllString(s, "<$1$2>MASKED<")
}

func TestBuild_EscapesTextContent(t *testing.T) {
	draft := sampleDraft()
	draft.Customer.Name = `A&B <Ticaret> "Ltd"`

	doc, err := NewUBLBuilder().Build(draft, "9876543210")
	require.NoError(t, err)

	xml := string(doc.XML)
	assert.Contains(t, xml, "A&amp;B &lt;Ticaret&gt;")
	assert.NotContains(t, xml, "<Ticaret>")
}
