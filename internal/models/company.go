package models

import "time"

type Company struct {
	ID         uint64    `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"size:191;not null" json:"name"`
	Slug       string    `gorm:"size:191;uniqueIndex;not null" json:"slug"`
	IsRequired bool      `json:"is_required"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Relations
	Departments []Department `gorm:"foreignKey:CompanyID" json:"-"`
}
