package models

import "time"

// JobRole belongs to a Department. CompanyID is a cached copy of the
// department's company and is rewritten on every insert/update.
type JobRole struct {
	ID           uint64    `gorm:"primaryKey" json:"id"`
	CompanyID    uint64    `gorm:"not null;index;uniqueIndex:idx_job_role_scope_slug" json:"company_id"`
	DepartmentID uint64    `gorm:"not null;index;uniqueIndex:idx_job_role_scope_slug" json:"department_id"`
	Label        string    `gorm:"size:191;not null" json:"label"`
	Slug         string    `gorm:"size:191;not null;uniqueIndex:idx_job_role_scope_slug" json:"slug"`
	MappedRole   string    `gorm:"size:191;not null" json:"mapped_role"` // access role key granted to holders
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	DepartmentName string `gorm:"->;-:migration" json:"department_name,omitempty"`
	CompanyName    string `gorm:"->;-:migration" json:"company_name,omitempty"`
}
