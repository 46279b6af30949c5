package model

import "time"

// Tenant lifecycle states.
const (
	TenantStatusActive    = "active"
	TenantStatusSuspended = "suspended"
	TenantStatusDeleted   = "deleted"
)

// Tenant represents a client organization. Users, projects and KPI
// definitions hang off it via tenant_id; deletion is logical (status)
// unless the super-admin requests a permanent purge.
type Tenant struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name      string    `json:"name" gorm:"type:varchar(100);not null"`
	Slug      string    `json:"slug" gorm:"type:varchar(100);not null;uniqueIndex"`
	Status    string    `json:"status" gorm:"type:varchar(20);not null;default:'active'"`
	CreatedBy string    `json:"created_by" gorm:"type:varchar(36);not null"`
	CreatedAt time.Time `json:"created_at"`
}

// TenantInvitation is a single-use, time-limited invitation to join a tenant.
type TenantInvitation struct {
	ID        string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	TenantID  string     `json:"tenant_id" gorm:"type:varchar(36);index;not null"`
	Email     string     `json:"email" gorm:"type:varchar(100);not null"`
	Role      string     `json:"role" gorm:"type:varchar(20);not null;default:'admin'"`
	Token     string     `json:"token" gorm:"type:varchar(64);not null;uniqueIndex"`
	ExpiresAt time.Time  `json:"expires_at" gorm:"not null"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
