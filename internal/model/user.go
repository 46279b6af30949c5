package model

import "time"

// Tenant-level roles, distinct from per-project roles.
const (
	TenantRoleAdmin  = "tenant_admin"
	TenantRoleMember = "member"
)

// User represents a tenant-scoped or independent (legacy, nil tenant) user.
// Email uniqueness is per scope: the same address may exist under two tenants.
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	TenantID  *string   `json:"tenant_id,omitempty" gorm:"type:varchar(36);index;uniqueIndex:idx_users_tenant_email"`
	Email     string    `json:"email" gorm:"type:varchar(100);not null;uniqueIndex:idx_users_tenant_email"`
	Password  string    `json:"-" gorm:"type:varchar(255);not null"`
	Name      string    `json:"name" gorm:"type:varchar(100);not null"`
	Role      string    `json:"role" gorm:"type:varchar(20);not null;default:'member'"`
	CreatedAt time.Time `json:"created_at"`
}
