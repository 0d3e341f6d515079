package models

import "time"

// ServiceOffering is a purchasable listing owned by a company.
type ServiceOffering struct {
	ID string `gorm:"primaryKey;size:36" json:"id"`

	CompanyID  string `gorm:"size:36;index" json:"company_id"`
	ProviderID string `gorm:"size:36;index" json:"provider_id"`

	Title     string  `gorm:"size:200" json:"title"`
	BasePrice float64 `json:"base_price"`
	Currency  string  `gorm:"size:3" json:"currency"`
	Active    bool    `gorm:"default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Company struct {
	ID string `gorm:"primaryKey;size:36" json:"id"`

	Name   string `gorm:"size:200" json:"name"`
	Status string `gorm:"size:20;default:'pending'" json:"status"` // pending | verified | suspended

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Zone is a service area owned by a company. A booking's zone must belong to
// the same company as the purchased service.
type Zone struct {
	ID string `gorm:"primaryKey;size:36" json:"id"`

	CompanyID string `gorm:"size:36;index" json:"company_id"`
	Name      string `gorm:"size:200" json:"name"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
