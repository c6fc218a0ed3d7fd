package models

import "time"

// Department is owned by exactly one Company. Its slug is unique within that
// company only.
type Department struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	CompanyID uint64    `gorm:"not null;index;uniqueIndex:idx_department_company_slug" json:"company_id"`
	Name      string    `gorm:"size:191;not null" json:"name"`
	Slug      string    `gorm:"size:191;not null;uniqueIndex:idx_department_company_slug" json:"slug"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Filled by list queries that join the owning company.
	CompanyName string `gorm:"->;-:migration" json:"company_name,omitempty"`

	Company  *Company  `gorm:"foreignKey:CompanyID" json:"-"`
	JobRoles []JobRole `gorm:"foreignKey:DepartmentID" json:"-"`
}
