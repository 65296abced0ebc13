package entity

import "time"

// Customer is a billed party. TaxID is a 10-digit VKN for legal entities or an
// 11-digit TCKN for natural persons; the document builder picks the scheme from
// the length.
type Customer struct {
	ID        string
	TenantID  string
	Name      string
	TaxID     string
	Address   string
	City      string
	Email     string
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
