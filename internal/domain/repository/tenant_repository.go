package repository

import "github.com/jetpos/jetpos-api/internal/domain/entity"

// TenantRepository is the persistence port for Tenant (DIP).
// The implementation lives in infrastructure.
type TenantRepository interface {
	Create(tenant *entity.Tenant) error
	GetByID(id string) (*entity.Tenant, error)
	// GetSettings reads only the settings document (light, per-request).
	GetSettings(id string) (*entity.TenantSettings, error)
	Update(tenant *entity.Tenant) error
	List(limit, offset int) ([]*entity.Tenant, error)
}
