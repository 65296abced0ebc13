package repository

import "github.com/jetpos/jetpos-api/internal/domain/entity"

// CustomerRepository is the persistence port for Customer (billing).
type CustomerRepository interface {
	Create(customer *entity.Customer) error
	GetByID(id string) (*entity.Customer, error)
	GetByTenantAndTaxID(tenantID, taxID string) (*entity.Customer, error)
	ListByTenant(tenantID string, limit, offset int) ([]*entity.Customer, error)
	Update(customer *entity.Customer) error
	Delete(id string) error
}
