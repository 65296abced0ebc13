package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jetpos/jetpos-api/internal/application/billing"
	"github.com/jetpos/jetpos-api/internal/application/dto"
	"github.com/jetpos/jetpos-api/internal/domain"
	"github.com/jetpos/jetpos-api/internal/infrastructure/qnb"
)

// InvoiceHandler handles the outbound invoicing endpoints (protected).
type InvoiceHandler struct {
	sendUC   *billing.SendInvoiceUseCase
	statusUC *billing.CheckStatusUseCase
	queryUC  *billing.InvoiceQueryUseCase
}

// NewInvoiceHandler builds the handler.
func NewInvoiceHandler(sendUC *billing.SendInvoiceUseCase, statusUC *billing.CheckStatusUseCase, queryUC *billing.InvoiceQueryUseCase) *InvoiceHandler {
	return &InvoiceHandler{sendUC: sendUC, statusUC: statusUC, queryUC: queryUC}
}

// Send submits an invoice to the gateway.
// POST /api/invoices/send
func (h *InvoiceHandler) Send(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "invalid token"})
	}
	var in dto.SendInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid body"})
	}
	res, err := h.sendUC.Send(c.Context(), tenantID, in)
	if err != nil {
		return gatewayError(c, err)
	}
	return c.JSON(res)
}

// Status polls the gateway for the current document state.
// GET /api/invoices/status/:id
func (h *InvoiceHandler) Status(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "invalid token"})
	}
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id required"})
	}
	res, err := h.statusUC.Check(c.Context(), tenantID, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "invoice not found"})
		}
		return gatewayError(c, err)
	}
	return c.JSON(res)
}

// List pages the local invoice ledger.
// GET /api/invoices
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "invalid token"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "invalid pagination"})
	}
	page.DefaultPage()
	invoices, err := h.queryUC.List(tenantID, page.Limit, page.Offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(invoices)
}

// gatewayError maps the qnb error taxonomy onto HTTP statuses.
func gatewayError(c *fiber.Ctx, err error) error {
	var vErr *qnb.ValidationError
	if errors.As(err, &vErr) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: vErr.Error()})
	}
	if errors.Is(err, domain.ErrInvalidInput) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "invalid input"})
	}
	if errors.Is(err, domain.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "resource not found"})
	}
	var authErr *qnb.AuthError
	if errors.As(err, &authErr) {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "GATEWAY_AUTH", Message: authErr.Error()})
	}
	var transportErr *qnb.TransportError
	if errors.As(err, &transportErr) {
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "GATEWAY_UNREACHABLE", Message: transportErr.Error()})
	}
	var rej *qnb.GatewayRejection
	if errors.As(err, &rej) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   rej.Reason,
			"detail":  rej.Body,
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
