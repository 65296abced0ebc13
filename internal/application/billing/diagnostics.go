package billing

import (
	"context"

	"github.com/jetpos/jetpos-api/internal/domain/einvoice"
	"github.com/jetpos/jetpos-api/internal/domain/entity"
	"github.com/jetpos/jetpos-api/internal/domain/repository"
	"github.com/jetpos/jetpos-api/internal/infrastructure/qnb"
)

// DiagnosticsUseCase exposes the gateway plumbing to the admin panel: a
// credential check per sub-service and a raw SOAP relay. It talks to the
// concrete client because both operations are about the wire, not the domain.
type DiagnosticsUseCase struct {
	tenantRepo   repository.TenantRepository
	client       *qnb.Client
	fallback     qnb.Config
	fallbackTest bool
}

// NewDiagnosticsUseCase builds the use case.
func NewDiagnosticsUseCase(tenantRepo repository.TenantRepository, client *qnb.Client, fallback qnb.Config, fallbackTest bool) *DiagnosticsUseCase {
	return &DiagnosticsUseCase{tenantRepo: tenantRepo, client: client, fallback: fallback, fallbackTest: fallbackTest}
}

// TestConnection performs a login against the selected sub-service with the
// tenant's resolved credentials and returns the session id on success.
func (uc *DiagnosticsUseCase) TestConnection(ctx context.Context, tenantID string, service einvoice.ServiceType) (qnb.SessionToken, error) {
	cfg, err := uc.resolveConfig(tenantID)
	if err != nil {
		return "", err
	}
	return uc.client.Login(ctx, cfg, service)
}

// Relay forwards a hand-crafted envelope and returns the upstream body
// verbatim.
func (uc *DiagnosticsUseCase) Relay(ctx context.Context, url string, headers map[string]string, envelope string) (*qnb.RelayResult, error) {
	return uc.client.Relay(ctx, url, headers, envelope)
}

func (uc *DiagnosticsUseCase) resolveConfig(tenantID string) (qnb.Config, error) {
	settings, err := uc.tenantRepo.GetSettings(tenantID)
	if err != nil {
		return qnb.Config{}, err
	}
	var qnbSettings *entity.TenantQNBSettings
	if settings != nil {
		qnbSettings = settings.QNB
	}
	return qnb.ResolveConfig(uc.fallback, uc.fallbackTest, qnbSettings), nil
}
