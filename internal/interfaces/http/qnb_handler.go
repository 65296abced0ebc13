package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jetpos/jetpos-api/internal/application/billing"
	"github.com/jetpos/jetpos-api/internal/application/dto"
	"github.com/jetpos/jetpos-api/internal/domain/einvoice"
	"github.com/jetpos/jetpos-api/internal/infrastructure/qnb"
)

// QNBHandler exposes the gateway diagnostics endpoints (protected).
type QNBHandler struct {
	uc *billing.DiagnosticsUseCase
}

// NewQNBHandler builds the handler.
func NewQNBHandler(uc *billing.DiagnosticsUseCase) *QNBHandler {
	return &QNBHandler{uc: uc}
}

// relayRequest is the body of the raw SOAP relay.
type relayRequest struct {
	URL          string            `json:"url"`
	Headers      map[string]string `json:"headers,omitempty"`
	SoapEnvelope string            `json:"soapEnvelope"`
}

// TestConnection performs a credential check against one sub-service.
// GET /api/qnb/test-connection?type=EFATURA|EARSIV
func (h *QNBHandler) TestConnection(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "invalid token"})
	}
	service := einvoice.ServiceEFatura
	if c.Query("type") == string(einvoice.ServiceEArsiv) {
		service = einvoice.ServiceEArsiv
	}
	session, err := h.uc.TestConnection(c.Context(), tenantID, service)
	if err != nil {
		var authErr *qnb.AuthError
		if errors.As(err, &authErr) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   authErr.Reason,
			})
		}
		return gatewayError(c, err)
	}
	return c.JSON(fiber.Map{
		"success":   true,
		"service":   string(service),
		"sessionId": string(session),
	})
}

// Relay forwards a prebuilt envelope to the gateway and returns the body
// untouched as text/xml.
// POST /api/qnb
func (h *QNBHandler) Relay(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "invalid token"})
	}
	var in relayRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid body"})
	}
	if in.URL == "" || in.SoapEnvelope == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "url and soapEnvelope are required"})
	}
	res, err := h.uc.Relay(c.Context(), in.URL, in.Headers, in.SoapEnvelope)
	if err != nil {
		return gatewayError(c, err)
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"success":        false,
			"upstreamStatus": res.StatusCode,
			"body":           res.Body,
		})
	}
	c.Set(fiber.HeaderContentType, "text/xml; charset=utf-8")
	return c.SendString(res.Body)
}
