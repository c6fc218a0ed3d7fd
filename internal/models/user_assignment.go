package models

import "time"

// UserAssignment binds a user to one (company, department, job role) triple.
// The tuple is unique; IsPrimary marks the binding currently in effect.
type UserAssignment struct {
	ID           uint64    `gorm:"primaryKey" json:"id"`
	UserID       uint64    `gorm:"not null;index;uniqueIndex:idx_assignment_tuple" json:"user_id"`
	CompanyID    uint64    `gorm:"not null;uniqueIndex:idx_assignment_tuple" json:"company_id"`
	DepartmentID uint64    `gorm:"not null;uniqueIndex:idx_assignment_tuple" json:"department_id"`
	JobRoleID    uint64    `gorm:"not null;index;uniqueIndex:idx_assignment_tuple" json:"job_role_id"`
	IsPrimary    bool      `gorm:"not null" json:"is_primary"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
