package billing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jetpos/jetpos-api/internal/domain"
	"github.com/jetpos/jetpos-api/internal/domain/entity"
	"github.com/jetpos/jetpos-api/internal/infrastructure/qnb"
)

func newCheckUseCase(gw *fakeGateway, invRepo *fakeInvoiceRepo) *CheckStatusUseCase {
	return NewCheckStatusUseCase(
		invRepo, &fakeTenantRepo{}, gw,
		qnb.Config{VKN: "9876543210", Password: "secret"}, true, testLogger(),
	)
}

func storedInvoice() *entity.Invoice {
	return &entity.Invoice{
		ID:            "inv-1",
		TenantID:      "tenant-1",
		InvoiceNumber: "JET2026000000042",
		ETTN:          "ettn-1",
		Status:        entity.StatusPending,
		Date:          time.Now(),
	}
}

func TestCheck_CleanStatusMarksSent(t *testing.T) {
	gw := &fakeGateway{statusResult: &qnb.StatusResult{Status: "GIB'E GONDERILDI"}}
	invRepo := newFakeInvoiceRepo()
	invRepo.invoices["inv-1"] = storedInvoice()
	uc := newCheckUseCase(gw, invRepo)

	res, err := uc.Check(context.Background(), "tenant-1", "inv-1")
	require.NoError(t, err)

	assert.Equal(t, entity.StatusSent, res.Status)
	assert.Equal(t, "GIB'E GONDERILDI", res.GatewayStatus)
	assert.Equal(t, entity.StatusSent, invRepo.invoices["inv-1"].Status)
}

func TestCheck_FailureMarkerMarksFailed(t *testing.T) {
	gw := &fakeGateway{statusResult: &qnb.StatusResult{Status: "HATA: ŞEMA KONTROLÜ"}}
	invRepo := newFakeInvoiceRepo()
	invRepo.invoices["inv-1"] = storedInvoice()
	uc := newCheckUseCase(gw, invRepo)

	res, err := uc.Check(context.Background(), "tenant-1", "inv-1")
	require.NoError(t, err)

	assert.Equal(t, entity.StatusFailed, res.Status)
	assert.Equal(t, entity.StatusFailed, invRepo.invoices["inv-1"].Status)
}

func TestCheck_ProvisionalNumberUpgraded(t *testing.T) {
	gw := &fakeGateway{statusResult: &qnb.StatusResult{
		Status:         "ONAYLANDI",
		DocumentNumber: "EAA2026000000009",
	}}
	invRepo := newFakeInvoiceRepo()
	inv := storedInvoice()
	inv.InvoiceNumber = "EP-1735689600"
	inv.IsEArchive = true
	invRepo.invoices["inv-1"] = inv
	uc := newCheckUseCase(gw, invRepo)

	res, err := uc.Check(context.Background(), "tenant-1", "inv-1")
	require.NoError(t, err)

	// The query went out by ETTN since the local number is provisional.
	assert.Equal(t, "ettn-1", gw.queriedETTN)
	assert.Equal(t, "EAA2026000000009", res.InvoiceNumber)
	assert.Equal(t, "EAA2026000000009", invRepo.invoices["inv-1"].InvoiceNumber)
}

func TestCheck_DraftAnswersLocally(t *testing.T) {
	gw := &fakeGateway{}
	invRepo := newFakeInvoiceRepo()
	inv := storedInvoice()
	inv.Status = entity.StatusDraft
	invRepo.invoices["inv-1"] = inv
	uc := newCheckUseCase(gw, invRepo)

	res, err := uc.Check(context.Background(), "tenant-1", "inv-1")
	require.NoError(t, err)

	assert.Equal(t, entity.StatusDraft, res.Status)
	assert.Empty(t, gw.queriedNo)
}

func TestCheck_WrongTenantIsNotFound(t *testing.T) {
	invRepo := newFakeInvoiceRepo()
	invRepo.invoices["inv-1"] = storedInvoice()
	uc := newCheckUseCase(&fakeGateway{}, invRepo)

	_, err := uc.Check(context.Background(), "other-tenant", "inv-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
