package entity

import "time"

// Tenant is one shop/merchant. Integration credentials live in Settings
// (a JSONB column edited from the admin panel) so that every tenant can point
// at its own gateway account without a redeploy.
type Tenant struct {
	ID        string
	Name      string
	Settings  TenantSettings
	Status    string // active, suspended, inactive
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TenantSettings mirrors the settings JSONB document.
type TenantSettings struct {
	QNB *TenantQNBSettings `json:"qnb,omitempty"`
}

// TenantQNBSettings are the per-tenant QNB eSolutions credentials and endpoint
// overrides. Empty fields fall back to the process-level configuration.
type TenantQNBSettings struct {
	VKN            string `json:"vkn,omitempty"`
	Password       string `json:"password,omitempty"`
	EarsivUsername string `json:"earsivUsername,omitempty"`
	ErpCode        string `json:"erpCode,omitempty"`
	IsTest         *bool  `json:"isTest,omitempty"`
	BaseURL        string `json:"baseUrl,omitempty"`
	EarsivBaseURL  string `json:"earsivBaseUrl,omitempty"`
}
