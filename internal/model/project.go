package model

import "time"

// Per-project roles.
const (
	ProjectRoleAdmin  = "admin"
	ProjectRoleEditor = "editor"
	ProjectRoleViewer = "viewer"
)

// Project owns targets, actuals and members. TenantID is nil for
// projects created by independent (legacy) users.
type Project struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	TenantID  *string   `json:"tenant_id,omitempty" gorm:"type:varchar(36);index"`
	Name      string    `json:"name" gorm:"type:varchar(200);not null"`
	OwnerID   string    `json:"owner_id" gorm:"type:varchar(36);not null;index"`
	CreatedAt time.Time `json:"created_at"`
}

// ProjectMember links a user to a project with a role.
type ProjectMember struct {
	ProjectID string    `json:"project_id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `json:"user_id" gorm:"primaryKey;type:varchar(36)"`
	Role      string    `json:"role" gorm:"type:varchar(20);not null"`
	CreatedAt time.Time `json:"created_at"`
}
