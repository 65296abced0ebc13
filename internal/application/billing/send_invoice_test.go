package billing

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jetpos/jetpos-api/internal/application/dto"
	"github.com/jetpos/jetpos-api/internal/domain/einvoice"
	"github.com/jetpos/jetpos-api/internal/domain/entity"
	"github.com/jetpos/jetpos-api/internal/infrastructure/qnb"
	"github.com/jetpos/jetpos-api/pkg/logger"
)

// fakeGateway records calls and plays back canned results.
type fakeGateway struct {
	sendResult   *qnb.SendResult
	sendErr      error
	statusResult *qnb.StatusResult
	statusErr    error

	sentDraft   qnb.Draft
	sentService einvoice.ServiceType
	queriedNo   string
	queriedETTN string
}

func (g *fakeGateway) SendInvoice(_ context.Context, _ qnb.Config, draft qnb.Draft, service einvoice.ServiceType) (*qnb.SendResult, error) {
	g.sentDraft = draft
	g.sentService = service
	return g.sendResult, g.sendErr
}

func (g *fakeGateway) CheckStatus(_ context.Context, _ qnb.Config, documentNumber, ettn string, _ einvoice.ServiceType) (*qnb.StatusResult, error) {
	g.queriedNo = documentNumber
	g.queriedETTN = ettn
	return g.statusResult, g.statusErr
}

func (g *fakeGateway) TestConnection(context.Context, qnb.Config) error { return nil }

type fakeInvoiceRepo struct {
	invoices  map[string]*entity.Invoice
	lines     []*entity.InvoiceLine
	createErr error
	updated   *entity.Invoice
}

func newFakeInvoiceRepo() *fakeInvoiceRepo {
	return &fakeInvoiceRepo{invoices: map[string]*entity.Invoice{}}
}

func (r *fakeInvoiceRepo) Create(inv *entity.Invoice) error {
	if r.createErr != nil {
		return r.createErr
	}
	cp := *inv
	r.invoices[inv.ID] = &cp
	return nil
}

func (r *fakeInvoiceRepo) CreateLine(line *entity.InvoiceLine) error {
	r.lines = append(r.lines, line)
	return nil
}

func (r *fakeInvoiceRepo) Update(inv *entity.Invoice) error {
	cp := *inv
	r.invoices[inv.ID] = &cp
	r.updated = &cp
	return nil
}

func (r *fakeInvoiceRepo) GetByID(id string) (*entity.Invoice, error) {
	return r.invoices[id], nil
}

func (r *fakeInvoiceRepo) GetLinesByInvoiceID(string) ([]*entity.InvoiceLine, error) {
	return r.lines, nil
}

func (r *fakeInvoiceRepo) ListByTenant(string, int, int) ([]*entity.Invoice, error) {
	out := make([]*entity.Invoice, 0, len(r.invoices))
	for _, inv := range r.invoices {
		out = append(out, inv)
	}
	return out, nil
}

type fakeCustomerRepo struct {
	customers map[string]*entity.Customer
}

func newFakeCustomerRepo() *fakeCustomerRepo {
	return &fakeCustomerRepo{customers: map[string]*entity.Customer{}}
}

func (r *fakeCustomerRepo) Create(c *entity.Customer) error {
	r.customers[c.ID] = c
	return nil
}

func (r *fakeCustomerRepo) GetByID(id string) (*entity.Customer, error) {
	return r.customers[id], nil
}

func (r *fakeCustomerRepo) GetByTenantAndTaxID(tenantID, taxID string) (*entity.Customer, error) {
	for _, c := range r.customers {
		if c.TenantID == tenantID && c.TaxID == taxID {
			return c, nil
		}
	}
	return nil, nil
}

func (r *fakeCustomerRepo) ListByTenant(string, int, int) ([]*entity.Customer, error) {
	return nil, nil
}
func (r *fakeCustomerRepo) Update(*entity.Customer) error { return nil }
func (r *fakeCustomerRepo) Delete(string) error           { return nil }

type fakeTenantRepo struct {
	settings *entity.TenantSettings
}

func (r *fakeTenantRepo) Create(*entity.Tenant) error { return nil }
func (r *fakeTenantRepo) GetByID(id string) (*entity.Tenant, error) {
	return &entity.Tenant{ID: id, Status: "active"}, nil
}
func (r *fakeTenantRepo) GetSettings(string) (*entity.TenantSettings, error) {
	return r.settings, nil
}
func (r *fakeTenantRepo) Update(*entity.Tenant) error               { return nil }
func (r *fakeTenantRepo) List(int, int) ([]*entity.Tenant, error)   { return nil, nil }

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Env: "test", Level: "error"})
}

func sendRequest() dto.SendInvoiceRequest {
	return dto.SendInvoiceRequest{
		Customer: &dto.InvoicePartyRequest{Name: "Örnek Ticaret Ltd.", TaxID: "1234567890"},
		Lines: []dto.InvoiceLineRequest{
			{Name: "Kahve makinesi", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(50), VatRate: decimal.NewFromInt(20)},
		},
	}
}

func newSendUseCase(gw *fakeGateway, invRepo *fakeInvoiceRepo, custRepo *fakeCustomerRepo) *SendInvoiceUseCase {
	return NewSendInvoiceUseCase(
		invRepo, custRepo, &fakeTenantRepo{},
		gw, qnb.Config{VKN: "9876543210", Password: "secret"}, true,
		"JetPOS Bilişim A.Ş.", testLogger(),
	)
}

func TestSend_Success(t *testing.T) {
	gw := &fakeGateway{sendResult: &qnb.SendResult{DocumentNumber: "JET2026000000042", ListID: "OID-1", ETTN: "ettn-1"}}
	invRepo := newFakeInvoiceRepo()
	uc := newSendUseCase(gw, invRepo, newFakeCustomerRepo())

	res, err := uc.Send(context.Background(), "tenant-1", sendRequest())
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, "JET2026000000042", res.InvoiceNumber)
	assert.Equal(t, "OID-1", res.ListID)

	inv := invRepo.invoices[res.InvoiceID]
	require.NotNil(t, inv)
	assert.Equal(t, entity.StatusSent, inv.Status)
	assert.Equal(t, "JET2026000000042", inv.InvoiceNumber)
	assert.Equal(t, "100", inv.NetTotal.String())
	assert.Equal(t, "20", inv.VatTotal.String())
	assert.Equal(t, "120", inv.GrandTotal.String())
	require.Len(t, invRepo.lines, 1)
	assert.Equal(t, "100", invRepo.lines[0].LineTotal.String())
}

func TestSend_ClassifiesPersonalTaxIDAsEArchive(t *testing.T) {
	gw := &fakeGateway{sendResult: &qnb.SendResult{DocumentNumber: "EAA2026000000001"}}
	invRepo := newFakeInvoiceRepo()
	uc := newSendUseCase(gw, invRepo, newFakeCustomerRepo())

	req := sendRequest()
	req.Customer.TaxID = "12345678901" // TCKN

	res, err := uc.Send(context.Background(), "tenant-1", req)
	require.NoError(t, err)

	assert.Equal(t, einvoice.ServiceEArsiv, gw.sentService)
	assert.True(t, invRepo.invoices[res.InvoiceID].IsEArchive)
}

func TestSend_ExplicitFlagWinsOverTaxID(t *testing.T) {
	gw := &fakeGateway{sendResult: &qnb.SendResult{DocumentNumber: "JET2026000000001"}}
	uc := newSendUseCase(gw, newFakeInvoiceRepo(), newFakeCustomerRepo())

	req := sendRequest()
	req.Customer.TaxID = "12345678901"
	eFatura := false
	req.IsEArchive = &eFatura

	_, err := uc.Send(context.Background(), "tenant-1", req)
	require.NoError(t, err)
	assert.Equal(t, einvoice.ServiceEFatura, gw.sentService)
}

func TestSend_GatewayRejectionRecordsFailure(t *testing.T) {
	gw := &fakeGateway{sendErr: &qnb.GatewayRejection{Reason: "VKN bulunamadı", Body: "<fault/>"}}
	invRepo := newFakeInvoiceRepo()
	uc := newSendUseCase(gw, invRepo, newFakeCustomerRepo())

	_, err := uc.Send(context.Background(), "tenant-1", sendRequest())

	var rej *qnb.GatewayRejection
	require.ErrorAs(t, err, &rej)

	require.Len(t, invRepo.invoices, 1)
	for _, inv := range invRepo.invoices {
		assert.Equal(t, entity.StatusFailed, inv.Status)
		assert.Contains(t, inv.LastError, "VKN bulunamadı")
	}
}

func TestSend_PersistFailureAfterDeliveryStillSucceeds(t *testing.T) {
	gw := &fakeGateway{sendResult: &qnb.SendResult{DocumentNumber: "JET2026000000042"}}
	invRepo := newFakeInvoiceRepo()
	invRepo.createErr = errors.New("connection reset")
	uc := newSendUseCase(gw, invRepo, newFakeCustomerRepo())

	res, err := uc.Send(context.Background(), "tenant-1", sendRequest())

	// The document is with the gateway; a local write failure must not be
	// reported as a send failure.
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "JET2026000000042", res.InvoiceNumber)
}

func TestSend_ReusesCustomerByTaxID(t *testing.T) {
	gw := &fakeGateway{sendResult: &qnb.SendResult{DocumentNumber: "JET2026000000042"}}
	custRepo := newFakeCustomerRepo()
	custRepo.customers["c-1"] = &entity.Customer{
		ID: "c-1", TenantID: "tenant-1", Name: "Örnek Ticaret Ltd.", TaxID: "1234567890",
	}
	invRepo := newFakeInvoiceRepo()
	uc := newSendUseCase(gw, invRepo, custRepo)

	res, err := uc.Send(context.Background(), "tenant-1", sendRequest())
	require.NoError(t, err)

	assert.Len(t, custRepo.customers, 1)
	assert.Equal(t, "c-1", invRepo.invoices[res.InvoiceID].CustomerID)
}

func TestSend_EmptyLinesRejectedBeforeGateway(t *testing.T) {
	gw := &fakeGateway{}
	uc := newSendUseCase(gw, newFakeInvoiceRepo(), newFakeCustomerRepo())

	req := sendRequest()
	req.Lines = nil
	_, err := uc.Send(context.Background(), "tenant-1", req)

	var vErr *qnb.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Empty(t, gw.sentService)
}
