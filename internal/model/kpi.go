package model

import "time"

// Functional domain tags carried by every KPI definition.
const (
	AgentCommander   = "COMMANDER"
	AgentAcquisition = "ACQUISITION"
	AgentOperations  = "OPERATIONS"
	AgentEngagement  = "ENGAGEMENT"
	AgentCreative    = "CREATIVE"
	AgentInsight     = "INSIGHT"
)

// KpiDefinition is one node of the KPI hierarchy. IDs are deterministic
// "scope_baseid" strings when instantiated for a tenant; TenantID is the
// authoritative scope column used for every ownership check. The root of
// a scope is the single level-1 node; each child is parent.level + 1.
type KpiDefinition struct {
	ID            string   `json:"id" gorm:"primaryKey;type:varchar(120)"`
	TenantID      *string  `json:"tenant_id,omitempty" gorm:"type:varchar(36);index"`
	Agent         string   `json:"agent" gorm:"type:varchar(20);not null"`
	Category      string   `json:"category" gorm:"type:varchar(100);not null"`
	Name          string   `json:"name" gorm:"type:varchar(200);not null"`
	Unit          string   `json:"unit" gorm:"type:varchar(50);not null"`
	DefaultTarget *float64 `json:"default_target,omitempty"`
	BenchmarkMin  *float64 `json:"benchmark_min,omitempty"`
	BenchmarkMax  *float64 `json:"benchmark_max,omitempty"`
	ParentKpiID   *string  `json:"parent_kpi_id,omitempty" gorm:"type:varchar(120);index"`
	Level         int      `json:"level" gorm:"not null;default:1"`
	Description   string   `json:"description" gorm:"type:text"`
}

// TableName keeps the original table name
func (KpiDefinition) TableName() string { return "kpi_master" }

// KpiTemplate is a shareable, scope-independent blueprint. At most one
// template is flagged default at a time.
type KpiTemplate struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(80)"`
	Name        string    `json:"name" gorm:"type:varchar(200);not null"`
	Description string    `json:"description" gorm:"type:text"`
	IsDefault   bool      `json:"is_default" gorm:"not null;default:false"`
	CreatedAt   time.Time `json:"created_at"`
}

// KpiTemplateItem mirrors KpiDefinition but belongs to a template; item
// ids carry the owning template id as prefix.
type KpiTemplateItem struct {
	ID            string   `json:"id" gorm:"primaryKey;type:varchar(160)"`
	TemplateID    string   `json:"template_id" gorm:"type:varchar(80);index;not null"`
	Agent         string   `json:"agent" gorm:"type:varchar(20);not null"`
	Category      string   `json:"category" gorm:"type:varchar(100);not null"`
	Name          string   `json:"name" gorm:"type:varchar(200);not null"`
	Unit          string   `json:"unit" gorm:"type:varchar(50);not null"`
	DefaultTarget *float64 `json:"default_target,omitempty"`
	BenchmarkMin  *float64 `json:"benchmark_min,omitempty"`
	BenchmarkMax  *float64 `json:"benchmark_max,omitempty"`
	ParentKpiID   *string  `json:"parent_kpi_id,omitempty" gorm:"type:varchar(160)"`
	Level         int      `json:"level" gorm:"not null;default:1"`
	Description   string   `json:"description" gorm:"type:text"`
}

// KpiTarget holds one target value per (project, kpi, year, month).
// A nil month denotes the annual target used as fallback when no
// month-specific target exists.
type KpiTarget struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	ProjectID   string    `json:"project_id" gorm:"type:varchar(36);not null;uniqueIndex:idx_targets_period"`
	KpiID       string    `json:"kpi_id" gorm:"type:varchar(120);not null;uniqueIndex:idx_targets_period"`
	TargetValue float64   `json:"target_value" gorm:"not null"`
	Year        int       `json:"year" gorm:"not null;uniqueIndex:idx_targets_period"`
	Month       *int      `json:"month,omitempty" gorm:"uniqueIndex:idx_targets_period"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// KpiActual holds one recorded actual per (project, kpi, year, month);
// month is always set. Upserts replace the value, never historize.
type KpiActual struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	ProjectID   string    `json:"project_id" gorm:"type:varchar(36);not null;uniqueIndex:idx_actuals_period"`
	KpiID       string    `json:"kpi_id" gorm:"type:varchar(120);not null;uniqueIndex:idx_actuals_period"`
	ActualValue float64   `json:"actual_value" gorm:"not null"`
	Year        int       `json:"year" gorm:"not null;uniqueIndex:idx_actuals_period"`
	Month       int       `json:"month" gorm:"not null;uniqueIndex:idx_actuals_period"`
	UpdatedBy   string    `json:"updated_by" gorm:"type:varchar(36);not null"`
	UpdatedAt   time.Time `json:"updated_at"`
}
