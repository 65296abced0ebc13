// Package qnb implements the integration with the QNB eSolutions document
// exchange gateway: UBL-TR document construction, SOAP envelope composition,
// the wsLogin session handshake and the send/status operations for the
// e-Invoice (connector) and e-Archive sub-services.
package qnb

import (
	"github.com/shopspring/decimal"

	"github.com/jetpos/jetpos-api/internal/domain/einvoice"
	"github.com/jetpos/jetpos-api/internal/domain/entity"
)

// Gateway endpoints. Each sub-service has its own host and servlet path; the
// test and production farms are separate installations.
const (
	baseURLTest   = "https://erpefaturatest1.qnbesolutions.com.tr"
	baseURLProd   = "https://erpefatura.qnbesolutions.com.tr"
	earsivURLTest = "https://portaltest.qnbesolutions.com.tr"
	earsivURLProd = "https://portal.qnbesolutions.com.tr"

	efaturaServicePath = "/efatura/ws/connectorService"
	earsivServicePath  = "/earsiv/ws/EarsivWebService"
)

// Config carries everything one gateway operation needs. It is always passed
// by value; nothing in this package holds tenant state between calls.
type Config struct {
	VKN            string // tax id; doubles as the e-Invoice login user
	Password       string // shared password for both sub-services
	EarsivUsername string // separate user for the e-Archive portal
	ErpCode        string
	BaseURL        string // e-Invoice connector host, no trailing slash
	EarsivBaseURL  string // e-Archive portal host, no trailing slash
}

// ResolveConfig merges tenant-level settings over the process-level fallback
// and fills endpoint defaults for the selected environment.
func ResolveConfig(fallback Config, fallbackIsTest bool, t *entity.TenantQNBSettings) Config {
	cfg := fallback
	isTest := fallbackIsTest
	if t != nil {
		if t.VKN != "" {
			cfg.VKN = t.VKN
		}
		if t.Password != "" {
			cfg.Password = t.Password
		}
		if t.EarsivUsername != "" {
			cfg.EarsivUsername = t.EarsivUsername
		}
		if t.ErpCode != "" {
			cfg.ErpCode = t.ErpCode
		}
		if t.IsTest != nil {
			isTest = *t.IsTest
		}
		if t.BaseURL != "" {
			cfg.BaseURL = t.BaseURL
		}
		if t.EarsivBaseURL != "" {
			cfg.EarsivBaseURL = t.EarsivBaseURL
		}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = baseURLProd
		if isTest {
			cfg.BaseURL = baseURLTest
		}
	}
	if cfg.EarsivBaseURL == "" {
		cfg.EarsivBaseURL = earsivURLProd
		if isTest {
			cfg.EarsivBaseURL = earsivURLTest
		}
	}
	return cfg
}

func (c Config) endpoint(service einvoice.ServiceType) string {
	if service == einvoice.ServiceEArsiv {
		return c.EarsivBaseURL + earsivServicePath
	}
	return c.BaseURL + efaturaServicePath
}

// Party identifies one side of the invoice.
type Party struct {
	TaxID   string // 10-digit VKN or 11-digit TCKN
	Name    string
	Address string
	City    string
}

// DraftLine is one item of a draft. VatAmount and LineTotal are computed by
// the builder, never trusted from the caller.
type DraftLine struct {
	Name      string
	Quantity  decimal.Decimal
	UnitCode  string // UN/ECE unit, C62 when empty
	UnitPrice decimal.Decimal
	VatRate   decimal.Decimal // percent
}

// Draft is the input of the document builder. It is constructed per send
// request and discarded after encoding.
type Draft struct {
	InvoiceNumber string // optional; a TASLAK- placeholder is generated when empty
	Service       einvoice.ServiceType
	Supplier      Party
	Customer      Party
	Note          string
	Lines         []DraftLine
}

// Totals are the computed aggregates of a draft, rounded half-up to two
// decimals. Payable is always Net + Vat after rounding.
type Totals struct {
	Net     decimal.Decimal
	Vat     decimal.Decimal
	Payable decimal.Decimal
	// Per line, in draft order: {vat amount, line total}.
	Lines []LineTotals
}

// LineTotals are the computed amounts of one line.
type LineTotals struct {
	LineTotal decimal.Decimal
	VatAmount decimal.Decimal
}

// Document is the output of the builder: the encoded UBL bytes plus the
// identifiers generated during the build.
type Document struct {
	XML    []byte
	ETTN   string // fresh UUIDv4, also embedded as cbc:UUID
	Number string // draft number or generated TASLAK- placeholder
	Totals Totals
}

// SessionToken is the opaque session identifier produced by wsLogin, valid
// for a service-managed duration; this package treats it as good for exactly
// one follow-up operation.
type SessionToken string

// SendResult is the structured outcome of a successful send.
type SendResult struct {
	DocumentNumber string // belgeNo handed to (or assigned by) the gateway
	ListID         string // belgeOid / document list id when the service exposes one
	ETTN           string
	PdfURL         string
	Provisional    bool // true when DocumentNumber is a locally generated EP- placeholder
}

// StatusResult is the loosely-typed status response lifted into named fields.
// Raw preserves the body verbatim for support escalation.
type StatusResult struct {
	DocumentNumber string // faturaNo when the gateway reports one
	Status         string // durum / durumAciklamasi / resultText
	ETTN           string
	PdfURL         string
	Raw            string
}
