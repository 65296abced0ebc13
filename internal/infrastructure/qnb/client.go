package qnb

import (
	"context"
	"crypto/md5"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jetpos/jetpos-api/internal/domain/einvoice"
	"github.com/jetpos/jetpos-api/internal/domain/entity"
	"github.com/jetpos/jetpos-api/pkg/logger"
)

const (
	soapContentType = "text/xml;charset=UTF-8"
	maxResponseSize = 1 << 20 // the gateway never sends more than a few KB
	requestTimeout  = 60 * time.Second
)

// Client talks to the QNB gateway. It is stateless between calls: every
// operation receives its Config and performs its own login, so one client is
// safe to share across tenants and goroutines.
type Client struct {
	httpClient *http.Client
	builder    *UBLBuilder
	log        *logger.Logger
}

// NewClient creates a gateway client with the default timeout.
func NewClient(log *logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		builder:    NewUBLBuilder(),
		log:        log,
	}
}

type soapResponse struct {
	statusCode int
	body       []byte
	cookies    []string
}

// post sends one SOAP request. Network failures become TransportError, non-2xx
// answers become GatewayRejection with the body preserved verbatim.
func (c *Client) post(ctx context.Context, op, url, envelope string, headers map[string]string) (*soapResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(envelope))
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", soapContentType)
	req.Header.Set("SOAPAction", `""`)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		reason := resp.Status
		if f, ok := extractFault(body); ok {
			reason = f
		}
		return nil, &GatewayRejection{StatusCode: resp.StatusCode, Reason: reason, Body: string(body)}
	}

	return &soapResponse{
		statusCode: resp.StatusCode,
		body:       body,
		cookies:    resp.Header.Values("Set-Cookie"),
	}, nil
}

// SendInvoice builds the UBL document for the draft and submits it to the
// selected sub-service. The e-Invoice connector path logs in first and sends
// with the session cookie; the e-Archive path authenticates inside the
// envelope itself.
func (c *Client) SendInvoice(ctx context.Context, cfg Config, draft Draft, service einvoice.ServiceType) (*SendResult, error) {
	if err := validateSend(cfg, draft); err != nil {
		return nil, err
	}

	if service == einvoice.ServiceEArsiv {
		return c.sendEarsiv(ctx, cfg, draft)
	}
	return c.sendEFatura(ctx, cfg, draft)
}

func (c *Client) sendEFatura(ctx context.Context, cfg Config, draft Draft) (*SendResult, error) {
	// Login before building; a rejected session means no document is minted.
	session, err := c.Login(ctx, cfg, einvoice.ServiceEFatura)
	if err != nil {
		return nil, err
	}

	doc, err := c.builder.Build(draft, cfg.VKN)
	if err != nil {
		return nil, err
	}

	b64 := base64.StdEncoding.EncodeToString(doc.XML)
	hash := fmt.Sprintf("%X", md5.Sum(doc.XML)) // connector verifies an uppercase hex MD5

	envelope := SendDocumentExtEnvelope(cfg.VKN, "FATURA_UBL", doc.Number, b64, hash, cfg.ErpCode)
	resp, err := c.post(ctx, "belgeGonderExt", cfg.endpoint(einvoice.ServiceEFatura), envelope,
		map[string]string{"Cookie": string(session)})
	if err != nil {
		return nil, err
	}
	if reason, ok := extractFault(resp.body); ok {
		return nil, &GatewayRejection{Reason: reason, Body: string(resp.body)}
	}

	listID, err := parseSendResponse(resp.body)
	if err != nil {
		return nil, &GatewayRejection{Reason: "unreadable belgeGonderExt response", Body: string(resp.body)}
	}

	c.log.Info().Str("belgeNo", doc.Number).Str("belgeOid", listID).Msg("e-invoice submitted")
	return &SendResult{DocumentNumber: doc.Number, ListID: listID, ETTN: doc.ETTN}, nil
}

func (c *Client) sendEarsiv(ctx context.Context, cfg Config, draft Draft) (*SendResult, error) {
	doc, err := c.builder.Build(draft, cfg.VKN)
	if err != nil {
		return nil, err
	}

	b64 := base64.StdEncoding.EncodeToString(doc.XML)
	islemID := uuid.New().String()

	envelope := CreateEarsivInvoiceEnvelope(b64, cfg.VKN, cfg.ErpCode, cfg.EarsivUsername, cfg.Password, islemID)

	// Credentials ride in the WS-Security header; some portal installations
	// additionally expect HTTP Basic, which is harmless where unused.
	basic := base64.StdEncoding.EncodeToString([]byte(cfg.EarsivUsername + ":" + cfg.Password))
	resp, err := c.post(ctx, "faturaOlusturExt", cfg.endpoint(einvoice.ServiceEArsiv), envelope,
		map[string]string{"Authorization": "Basic " + basic})
	if err != nil {
		return nil, err
	}
	if reason, ok := extractFault(resp.body); ok {
		return nil, &GatewayRejection{Reason: reason, Body: string(resp.body)}
	}

	out, err := parseEarsivCreateResponse(resp.body)
	if err != nil {
		return nil, &GatewayRejection{Reason: "unreadable faturaOlusturExt response", Body: string(resp.body)}
	}
	if out.ResultCode != "" && out.ResultCode != "AE00000" && out.ResultCode != "0" {
		reason := out.ResultText
		if reason == "" {
			reason = "resultCode " + out.ResultCode
		}
		return nil, &GatewayRejection{Reason: reason, Body: string(resp.body)}
	}

	result := &SendResult{
		DocumentNumber: out.Number,
		ETTN:           out.ETTN,
		PdfURL:         out.PdfURL,
	}
	if result.ETTN == "" {
		result.ETTN = doc.ETTN
	}
	if result.DocumentNumber == "" {
		// Accepted without a number yet; hand out a provisional one the
		// status query can later upgrade.
		result.DocumentNumber = fmt.Sprintf("%s%d", entity.ProvisionalPrefix, time.Now().Unix())
		result.Provisional = true
	}

	c.log.Info().Str("faturaNo", result.DocumentNumber).Bool("provisional", result.Provisional).Msg("e-archive invoice created")
	return result, nil
}

// CheckStatus queries the gateway for the current state of a previously sent
// document. A provisional number cannot be looked up by number, so when the
// ETTN is known the e-archive query switches to the UUID variant.
func (c *Client) CheckStatus(ctx context.Context, cfg Config, documentNumber, ettn string, service einvoice.ServiceType) (*StatusResult, error) {
	if documentNumber == "" && ettn == "" {
		return nil, &ValidationError{Field: "documentNumber", Reason: "is required"}
	}

	var envelope string
	var headers map[string]string
	if service == einvoice.ServiceEArsiv {
		if einvoice.IsProvisional(documentNumber) && ettn != "" {
			envelope = EarsivStatusByUUIDEnvelope(cfg.VKN, ettn)
		} else {
			envelope = EarsivStatusEnvelope(cfg.VKN, documentNumber)
		}
		session, err := c.Login(ctx, cfg, einvoice.ServiceEArsiv)
		if err != nil {
			return nil, err
		}
		headers = map[string]string{"Cookie": string(session)}
	} else {
		session, err := c.Login(ctx, cfg, einvoice.ServiceEFatura)
		if err != nil {
			return nil, err
		}
		envelope = CheckStatusExtEnvelope(cfg.VKN, documentNumber, "FATURA_UBL")
		headers = map[string]string{"Cookie": string(session)}
	}

	resp, err := c.post(ctx, "statusQuery", cfg.endpoint(service), envelope, headers)
	if err != nil {
		return nil, err
	}
	if reason, ok := extractFault(resp.body); ok {
		return nil, &GatewayRejection{Reason: reason, Body: string(resp.body)}
	}

	result, err := parseStatusResponse(resp.body, documentNumber)
	if err != nil {
		return nil, &GatewayRejection{Reason: "unreadable status response", Body: string(resp.body)}
	}
	return &result, nil
}

// TestConnection verifies the credentials by performing a login against both
// sub-services; it reports the first failure.
func (c *Client) TestConnection(ctx context.Context, cfg Config) error {
	if _, err := c.Login(ctx, cfg, einvoice.ServiceEFatura); err != nil {
		return err
	}
	if cfg.EarsivUsername != "" {
		if _, err := c.Login(ctx, cfg, einvoice.ServiceEArsiv); err != nil {
			return err
		}
	}
	return nil
}

func validateSend(cfg Config, draft Draft) error {
	if cfg.VKN == "" {
		return &ValidationError{Field: "vkn", Reason: "is required"}
	}
	if cfg.Password == "" {
		return &ValidationError{Field: "password", Reason: "is required"}
	}
	if draft.Customer.Name == "" {
		return &ValidationError{Field: "customer.name", Reason: "is required"}
	}
	if len(draft.Lines) == 0 {
		return &ValidationError{Field: "lines", Reason: "must not be empty"}
	}
	for i, line := range draft.Lines {
		if line.Name == "" {
			return &ValidationError{Field: fmt.Sprintf("lines[%d].name", i), Reason: "is required"}
		}
		if line.Quantity.Sign() <= 0 {
			return &ValidationError{Field: fmt.Sprintf("lines[%d].quantity", i), Reason: "must be positive"}
		}
		if line.UnitPrice.Sign() < 0 {
			return &ValidationError{Field: fmt.Sprintf("lines[%d].unitPrice", i), Reason: "must not be negative"}
		}
		if line.VatRate.Sign() < 0 {
			return &ValidationError{Field: fmt.Sprintf("lines[%d].vatRate", i), Reason: "must not be negative"}
		}
	}
	return nil
}
