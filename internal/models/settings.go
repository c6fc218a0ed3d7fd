package models

import "time"

// Settings is a single-row table holding storefront and onboarding toggles.
type Settings struct {
	ID                        uint64    `gorm:"primaryKey" json:"-"`
	GuestCanSeePrice          bool      `gorm:"not null" json:"guest_can_see_price"`
	DisableGuestPurchase      bool      `gorm:"not null" json:"disable_guest_purchase"`
	CompanyRequiredOnboarding bool      `gorm:"not null" json:"company_required_onboarding"`
	UpdatedAt                 time.Time `json:"updated_at"`
}

// DefaultSettings mirrors the values written on first setup.
func DefaultSettings() Settings {
	return Settings{
		ID:                        1,
		GuestCanSeePrice:          true,
		DisableGuestPurchase:      true,
		CompanyRequiredOnboarding: true,
	}
}
