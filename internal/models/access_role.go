package models

import (
	"time"

	"gorm.io/datatypes"
)

// AccessRole is an entry of the access-role registry. Capabilities holds a JSON
// object of capability key -> bool.
type AccessRole struct {
	ID           uint64         `gorm:"primaryKey" json:"id"`
	Key          string         `gorm:"column:role_key;size:191;uniqueIndex;not null" json:"key"`
	DisplayName  string         `gorm:"size:191;not null" json:"display_name"`
	Capabilities datatypes.JSON `gorm:"type:json" json:"capabilities"`
	IsSystem     bool           `json:"is_system"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// UserAccessRole grants an access role (by key) to a user. The table uses the
// composite primary key (user_id, role_key).
type UserAccessRole struct {
	UserID  uint64 `gorm:"primaryKey;autoIncrement:false"`
	RoleKey string `gorm:"primaryKey;size:191"`
}
