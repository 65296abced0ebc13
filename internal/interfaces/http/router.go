package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jetpos/jetpos-api/internal/application/auth"
	"github.com/jetpos/jetpos-api/internal/application/billing"
)

// RouterDeps dependencies for the router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	CustomerUC  *billing.CustomerUseCase
	SendUC      *billing.SendInvoiceUseCase
	StatusUC    *billing.CheckStatusUseCase
	QueryUC     *billing.InvoiceQueryUseCase
	Diagnostics *billing.DiagnosticsUseCase
	JWTSecret   string
}

// Router registers the API routes.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (public)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Protected routes (Bearer token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Customers
	customers := protected.Group("/customers")
	customerHandler := NewCustomerHandler(deps.CustomerUC)
	customers.Post("/", customerHandler.Create)
	customers.Get("/", customerHandler.List)
	customers.Get("/:id", customerHandler.GetByID)
	customers.Put("/:id", customerHandler.Update)

	// Invoices
	invoices := protected.Group("/invoices")
	invoiceHandler := NewInvoiceHandler(deps.SendUC, deps.StatusUC, deps.QueryUC)
	invoices.Post("/send", invoiceHandler.Send)
	invoices.Get("/status/:id", invoiceHandler.Status)
	invoices.Get("/", invoiceHandler.List)

	// Gateway diagnostics (admin only)
	qnbGroup := protected.Group("/qnb", RequireRole("admin"))
	qnbHandler := NewQNBHandler(deps.Diagnostics)
	qnbGroup.Get("/test-connection", qnbHandler.TestConnection)
	qnbGroup.Post("/", qnbHandler.Relay)
}
