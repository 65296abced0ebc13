package qnb

import (
	"bytes"
	"encoding/xml"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jetpos/jetpos-api/internal/domain/einvoice"
)

// UBL 2.1 namespaces (UBL-TR profile).
const (
	NsInvoice = "urn:oasis:names:specification:ubl:schema:xsd:Invoice-2"
	NsCac     = "urn:oasis:names:specification:ubl:schema:xsd:CommonAggregateComponents-2"
	NsCbc     = "urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2"
	NsExt     = "urn:oasis:names:specification:ubl:schema:xsd:CommonExtensionComponents-2"
)

// UBL-TR constants. Every currency-qualified amount uses the local currency.
const (
	currencyCode    = "TRY"
	customizationID = "TR1.2"
	invoiceTypeCode = "SATIS"
	profileEFatura  = "TICARIFATURA"
	profileEarsiv   = "EARSIVFATURA"
	vatSchemeName   = "KDV"
	vatTaxTypeCode  = "0015"
	defaultUnit     = "C62"
	defaultCity     = "İstanbul"
	countryName     = "Türkiye"
)

// UBLBuilder builds the UBL-TR 1.2 invoice document. Pure except for the
// fresh ETTN and timestamp generated on every call.
type UBLBuilder struct{}

// NewUBLBuilder creates the builder.
func NewUBLBuilder() *UBLBuilder {
	return &UBLBuilder{}
}

// ComputeTotals derives the per-line and aggregate amounts of a draft.
// Half-up rounding to two decimals at every step; the payable amount is
// always net + VAT after rounding.
func ComputeTotals(lines []DraftLine) Totals {
	t := Totals{Net: decimal.Zero, Vat: decimal.Zero, Lines: make([]LineTotals, len(lines))}
	for i, line := range lines {
		lineTotal := line.Quantity.Mul(line.UnitPrice).Round(2)
		vat := lineTotal.Mul(line.VatRate).Div(decimal.NewFromInt(100)).Round(2)
		t.Lines[i] = LineTotals{LineTotal: lineTotal, VatAmount: vat}
		t.Net = t.Net.Add(lineTotal)
		t.Vat = t.Vat.Add(vat)
	}
	t.Payable = t.Net.Add(t.Vat).Round(2)
	return t
}

// Build generates the invoice document. A draft with no lines still yields a
// syntactically valid document with zero totals; validation happens before
// this layer.
func (b *UBLBuilder) Build(draft Draft, supplierVKN string) (*Document, error) {
	ettn := uuid.New().String()
	now := time.Now()

	number := draft.InvoiceNumber
	if number == "" {
		number = "TASLAK-" + ettn[:8]
	}

	totals := ComputeTotals(draft.Lines)

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")

	// The encoder would emit a second xmlns for a namespaced root name, so
	// the root carries its declarations as plain attributes.
	root := xml.StartElement{
		Name: xml.Name{Local: "Invoice"},
		Attr: []xml.Attr{
			{Name: xml.Name{Local: "xmlns"}, Value: NsInvoice},
			{Name: xml.Name{Local: "xmlns:cac"}, Value: NsCac},
			{Name: xml.Name{Local: "xmlns:cbc"}, Value: NsCbc},
			{Name: xml.Name{Local: "xmlns:ext"}, Value: NsExt},
		},
	}
	if err := enc.EncodeToken(root); err != nil {
		return nil, err
	}

	profile := profileEFatura
	if draft.Service == einvoice.ServiceEArsiv {
		profile = profileEarsiv
	}

	writeCbc(enc, "UBLVersionID", "2.1")
	writeCbc(enc, "CustomizationID", customizationID)
	writeCbc(enc, "ProfileID", profile)
	writeCbc(enc, "ID", number)
	writeCbc(enc, "CopyIndicator", "false")
	writeCbc(enc, "UUID", ettn)
	writeCbc(enc, "IssueDate", now.Format("2006-01-02"))
	writeCbc(enc, "IssueTime", now.Format("15:04:05"))
	writeCbc(enc, "InvoiceTypeCode", invoiceTypeCode)
	if draft.Note != "" {
		writeCbc(enc, "Note", draft.Note)
	}
	writeCbc(enc, "DocumentCurrencyCode", currencyCode)
	writeCbc(enc, "LineCountNumeric", strconv.Itoa(len(draft.Lines)))

	b.writeSupplierParty(enc, draft.Supplier, supplierVKN)
	b.writeCustomerParty(enc, draft.Customer)
	b.writeTaxTotal(enc, totals)
	b.writeLegalMonetaryTotal(enc, totals)
	for i, line := range draft.Lines {
		b.writeInvoiceLine(enc, i+1, line, totals.Lines[i])
	}

	if err := enc.EncodeToken(root.End()); err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	return &Document{XML: buf.Bytes(), ETTN: ettn, Number: number, Totals: totals}, nil
}

func (b *UBLBuilder) writeSupplierParty(enc *xml.Encoder, supplier Party, supplierVKN string) {
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCac, Local: "AccountingSupplierParty"}})
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCac, Local: "Party"}})

	// The supplier identification is always the tenant VKN, never trusted
	// from the draft.
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCac, Local: "PartyIdentification"}})
	writeCbcWithAttr(enc, "ID", digitsOnly(supplierVKN), "schemeID", "VKN")
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCac, Local: "PartyIdentification"}})

	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCac, Local: "PartyName"}})
	writeCbc(enc, "Name", supplier.Name)
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCac, Local: "PartyName"}})

	b.writePostalAddress(enc, supplier)

	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCac, Local: "PartyTaxScheme"}})
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCac, Local: "TaxScheme"}})
	writeCbc(enc, "Name", "KURUMLAR VERGISI")
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCac, Local: "TaxScheme"}})
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCac, Local: "PartyTaxScheme"}})

	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCac, Local: "Party"}})
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCac, Local: "AccountingSupplierParty"}})
}

func (b *UBLBuilder) writeCustomerParty(enc *xml.Encoder, customer Party) {
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCac, Local: "AccountingCustomerParty"}})
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCac, Local: "Party"}})

	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCac, Local: "PartyIdentification"}})
	writeCbcWithAttr(enc, "ID", digitsOnly(customer.TaxID), "schemeID", schemeIDForTaxID(customer.TaxID))
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCac, Local: "PartyIdentification"}})

	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCac, Local: "PartyName"}})
	writeCbc(enc, "Name", customer.Name)
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCac, Local: "PartyName"}})

	b.writePostalAddress(enc, customer)

	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCac, Local: "Party"}})
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCac, Local: "AccountingCustomerParty"}})
}

func (b *UBLBuilder) writePostalAddress(enc *xml.Encoder, p Party) {
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCac, Local: "PostalAddress"}})
	if p.Address != "" {
		writeCbc(enc, "StreetName", p.Address)
	}
	city := p.City
	if city == "" {
		city = defaultCity
	}
	writeCbc(enc, "CityName", city)
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCac, Local: "Country"}})
	writeCbc(enc, "Name", countryName)
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCac, Local: "Country"}})
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCac, Local: "PostalAddress"}})
}

func (b *UBLBuilder) writeTaxTotal(enc *xml.Encoder, totals Totals) {
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCac, Local: "TaxTotal"}})
	writeCbcAmount(enc, "TaxAmount", formatDecimal(totals.Vat))
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCac, Local: "TaxSubtotal"}})
	writeCbcAmount(enc, "TaxableAmount", formatDecimal(totals.Net))
	writeCbcAmount(enc, "TaxAmount", formatDecimal(totals.Vat))
	writeTaxCategory(enc)
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCac, Local: "TaxSubtotal"}})
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCac, Local: "TaxTotal"}})
}

func (b *UBLBuilder) writeLegalMonetaryTotal(enc *xml.Encoder, totals Totals) {
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCac, Local: "LegalMonetaryTotal"}})
	writeCbcAmount(enc, "LineExtensionAmount", formatDecimal(totals.Net))
	writeCbcAmount(enc, "TaxExclusiveAmount", formatDecimal(totals.Net))
	writeCbcAmount(enc, "TaxInclusiveAmount", formatDecimal(totals.Payable))
	writeCbcAmount(enc, "AllowanceTotalAmount", "0.00")
	writeCbcAmount(enc, "PayableAmount", formatDecimal(totals.Payable))
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCac, Local: "LegalMonetaryTotal"}})
}

func (b *UBLBuilder) writeInvoiceLine(enc *xml.Encoder, lineNum int, line DraftLine, amounts LineTotals) {
	unitCode := line.UnitCode
	if unitCode == "" {
		unitCode = defaultUnit
	}
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCac, Local: "InvoiceLine"}})
	writeCbc(enc, "ID", strconv.Itoa(lineNum))
	writeCbcWithAttr(enc, "InvoicedQuantity", formatDecimal(line.Quantity), "unitCode", unitCode)
	writeCbcAmount(enc, "LineExtensionAmount", formatDecimal(amounts.LineTotal))

	// Each line carries its own tax subtotal at the line's VAT rate.
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCac, Local: "TaxTotal"}})
	writeCbcAmount(enc, "TaxAmount", formatDecimal(amounts.VatAmount))
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCac, Local: "TaxSubtotal"}})
	writeCbcAmount(enc, "TaxableAmount", formatDecimal(amounts.LineTotal))
	writeCbcAmount(enc, "TaxAmount", formatDecimal(amounts.VatAmount))
	writeCbc(enc, "Percent", line.VatRate.String())
	writeTaxCategory(enc)
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCac, Local: "TaxSubtotal"}})
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCac, Local: "TaxTotal"}})

	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCac, Local: "Item"}})
	writeCbc(enc, "Name", line.Name)
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCac, Local: "Item"}})

	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCac, Local: "Price"}})
	writeCbcAmount(enc, "PriceAmount", formatDecimal(line.UnitPrice))
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCac, Local: "Price"}})

	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCac, Local: "InvoiceLine"}})
}

func writeTaxCategory(enc *xml.Encoder) {
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCac, Local: "TaxCategory"}})
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCac, Local: "TaxScheme"}})
	writeCbc(enc, "Name", vatSchemeName)
	writeCbc(enc, "TaxTypeCode", vatTaxTypeCode)
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCac, Local: "TaxScheme"}})
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCac, Local: "TaxCategory"}})
}

func writeCbc(enc *xml.Encoder, local, value string) {
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Space: NsCbc, Local: local}})
	_ = enc.EncodeToken(xml.CharData(value))
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCbc, Local: local}})
}

func writeCbcAmount(enc *xml.Encoder, local, value string) {
	writeCbcWithAttr(enc, local, value, "currencyID", currencyCode)
}

func writeCbcWithAttr(enc *xml.Encoder, local, value, attrLocal, attrValue string) {
	_ = enc.EncodeToken(xml.StartElement{
		Name: xml.Name{Space: NsCbc, Local: local},
		Attr: []xml.Attr{{Name: xml.Name{Local: attrLocal}, Value: attrValue}},
	})
	_ = enc.EncodeToken(xml.CharData(value))
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Space: NsCbc, Local: local}})
}

// schemeIDForTaxID selects the identification scheme from the identifier
// length: 11 digits is a natural person's TCKN, everything else a VKN.
func schemeIDForTaxID(taxID string) string {
	if len(digitsOnly(taxID)) == 11 {
		return "TCKN"
	}
	return "VKN"
}

func digitsOnly(s string) string {
	var out []byte
	for _, b := range []byte(s) {
		if b >= '0' && b <= '9' {
			out = append(out, b)
		}
	}
	return string(out)
}

func formatDecimal(d decimal.Decimal) string {
	return d.Round(2).StringFixed(2)
}
