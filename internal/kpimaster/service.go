package kpimaster

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"kpi-dashboard/internal/model"
	"kpi-dashboard/prometheus"
)

// Service manages KPI definitions, templates and per-scope
// instantiation. All reads and writes go through the injected handle.
type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewService(db *gorm.DB, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{db: db, log: log}
}

// EnsureDefaultTemplate seeds the built-in D2C template on first start.
// It is a no-op when a default template already exists.
func (s *Service) EnsureDefaultTemplate(ctx context.Context) error {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var count int64
	if err := s.db.WithContext(ctx).Model(&model.KpiTemplate{}).
		Where("is_default = ?", true).Count(&count).Error; err != nil {
		return fmt.Errorf("counting default templates: %w", err)
	}
	if count > 0 {
		return nil
	}

	items := make([]model.KpiTemplateItem, 0, len(defaultKpiData))
	for _, d := range builtinDefinitions() {
		item := model.KpiTemplateItem{
			ID:            templateItemID(DefaultTemplateID, d.ID),
			TemplateID:    DefaultTemplateID,
			Agent:         d.Agent,
			Category:      d.Category,
			Name:          d.Name,
			Unit:          d.Unit,
			DefaultTarget: d.DefaultTarget,
			BenchmarkMin:  d.BenchmarkMin,
			BenchmarkMax:  d.BenchmarkMax,
			Level:         d.Level,
			Description:   d.Description,
		}
		if d.ParentKpiID != nil {
			parent := templateItemID(DefaultTemplateID, *d.ParentKpiID)
			item.ParentKpiID = &parent
		}
		items = append(items, item)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tpl := model.KpiTemplate{
			ID:          DefaultTemplateID,
			Name:        "D2C standard KPI set",
			Description: "Built-in revenue-driver hierarchy: traffic x CVR x AOV x LTV",
			IsDefault:   true,
		}
		if err := tx.Create(&tpl).Error; err != nil {
			return err
		}
		return tx.CreateInBatches(items, 100).Error
	})
	if err != nil {
		return fmt.Errorf("seeding default template: %w", err)
	}

	s.log.Info("seeded default kpi template",
		zap.String("template_id", DefaultTemplateID),
		zap.Int("items", len(items)))
	return nil
}

// EnsureLegacyDefinitions seeds the unscoped definition set used by
// pre-tenant projects. No-op once any unscoped row exists.
func (s *Service) EnsureLegacyDefinitions(ctx context.Context) error {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var count int64
	if err := s.db.WithContext(ctx).Model(&model.KpiDefinition{}).
		Where("tenant_id IS NULL").Count(&count).Error; err != nil {
		return fmt.Errorf("counting legacy definitions: %w", err)
	}
	if count > 0 {
		return nil
	}

	defs := builtinDefinitions()
	if err := s.db.WithContext(ctx).CreateInBatches(defs, 100).Error; err != nil {
		return fmt.Errorf("seeding legacy definitions: %w", err)
	}
	s.log.Info("seeded legacy kpi definitions", zap.Int("count", len(defs)))
	return nil
}

// InstantiateForScope copies a template into a tenant scope. Every item
// id is remapped to "scopeID_baseID" and parent links are remapped the
// same way, so the instantiated tree is isomorphic to the template.
// A scope that already has definitions is left untouched.
//
// Source resolution: the given template, else the default template,
// else the built-in set.
func (s *Service) InstantiateForScope(ctx context.Context, scopeID string, templateID *string) error {
	defer prometheus.TrackDBOperation("insert")(time.Now())

	var count int64
	if err := s.db.WithContext(ctx).Model(&model.KpiDefinition{}).
		Where("tenant_id = ?", scopeID).Count(&count).Error; err != nil {
		return fmt.Errorf("counting scope definitions: %w", err)
	}
	if count > 0 {
		return nil
	}

	defs, err := s.sourceDefinitions(ctx, templateID)
	if err != nil {
		return err
	}

	rows := make([]model.KpiDefinition, 0, len(defs))
	for _, d := range defs {
		d.ID = scopedID(scopeID, d.ID)
		if d.ParentKpiID != nil {
			parent := scopedID(scopeID, *d.ParentKpiID)
			d.ParentKpiID = &parent
		}
		scope := scopeID
		d.TenantID = &scope
		rows = append(rows, d)
	}

	if err := s.db.WithContext(ctx).CreateInBatches(rows, 100).Error; err != nil {
		return fmt.Errorf("instantiating kpi set for scope %s: %w", scopeID, err)
	}

	prometheus.RecordKpiOperation("instantiate")
	s.log.Info("instantiated kpi set",
		zap.String("scope_id", scopeID),
		zap.Int("count", len(rows)))
	return nil
}

// sourceDefinitions returns the base (unscoped, unprefixed) definitions
// to instantiate from.
func (s *Service) sourceDefinitions(ctx context.Context, templateID *string) ([]model.KpiDefinition, error) {
	tplID := ""
	if templateID != nil && *templateID != "" {
		tplID = *templateID
	} else {
		var tpl model.KpiTemplate
		err := s.db.WithContext(ctx).Where("is_default = ?", true).First(&tpl).Error
		switch {
		case err == nil:
			tplID = tpl.ID
		case errors.Is(err, gorm.ErrRecordNotFound):
			return builtinDefinitions(), nil
		default:
			return nil, fmt.Errorf("looking up default template: %w", err)
		}
	}

	var items []model.KpiTemplateItem
	if err := s.db.WithContext(ctx).
		Where("template_id = ?", tplID).
		Order("level, agent, category, id").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("loading template %s: %w", tplID, err)
	}
	if len(items) == 0 {
		if templateID != nil && *templateID != "" {
			return nil, fmt.Errorf("template %s: %w", tplID, ErrNotFound)
		}
		return builtinDefinitions(), nil
	}

	defs := make([]model.KpiDefinition, 0, len(items))
	for _, it := range items {
		d := model.KpiDefinition{
			ID:            baseID(it.ID, tplID),
			Agent:         it.Agent,
			Category:      it.Category,
			Name:          it.Name,
			Unit:          it.Unit,
			DefaultTarget: it.DefaultTarget,
			BenchmarkMin:  it.BenchmarkMin,
			BenchmarkMax:  it.BenchmarkMax,
			Level:         it.Level,
			Description:   it.Description,
		}
		if it.ParentKpiID != nil {
			parent := baseID(*it.ParentKpiID, tplID)
			d.ParentKpiID = &parent
		}
		defs = append(defs, d)
	}
	return defs, nil
}

// ListByScope returns the definitions visible to a scope, ordered for
// stable rendering. A nil scope selects the legacy unscoped set.
func (s *Service) ListByScope(ctx context.Context, scopeID *string) ([]model.KpiDefinition, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	q := s.db.WithContext(ctx).Model(&model.KpiDefinition{})
	if scopeID != nil {
		q = q.Where("tenant_id = ?", *scopeID)
	} else {
		q = q.Where("tenant_id IS NULL")
	}

	var defs []model.KpiDefinition
	if err := q.Order("level, agent, category, id").Find(&defs).Error; err != nil {
		return nil, fmt.Errorf("listing kpi definitions: %w", err)
	}
	return defs, nil
}

// DefinitionInput carries the caller-controlled fields of a definition.
// For AddDefinition the ID and ParentKpiID are base ids; the service
// applies the scope prefix itself.
type DefinitionInput struct {
	ID            string   `json:"id" validate:"required,min=2,max=80"`
	Agent         string   `json:"agent" validate:"required"`
	Category      string   `json:"category" validate:"required"`
	Name          string   `json:"name" validate:"required"`
	Unit          string   `json:"unit" validate:"required"`
	DefaultTarget *float64 `json:"default_target"`
	BenchmarkMin  *float64 `json:"benchmark_min"`
	BenchmarkMax  *float64 `json:"benchmark_max"`
	ParentKpiID   *string  `json:"parent_kpi_id"`
	Description   string   `json:"description"`
}

// AddDefinition creates a custom node in a scope. The node's level is
// derived from its parent; a root add is rejected because every scope
// already has exactly one root.
func (s *Service) AddDefinition(ctx context.Context, scopeID *string, in DefinitionInput) (*model.KpiDefinition, error) {
	defer prometheus.TrackDBOperation("insert")(time.Now())

	if in.ParentKpiID == nil || *in.ParentKpiID == "" {
		return nil, ErrNoParent
	}

	id := in.ID
	parentID := *in.ParentKpiID
	if scopeID != nil {
		id = scopedID(*scopeID, in.ID)
	}

	var def *model.KpiDefinition
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var parent model.KpiDefinition
		q := tx.Where("id = ?", parentID)
		if scopeID != nil {
			q = q.Where("tenant_id = ?", *scopeID)
		} else {
			q = q.Where("tenant_id IS NULL")
		}
		if err := q.First(&parent).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNoParent
			}
			return err
		}

		var count int64
		if err := tx.Model(&model.KpiDefinition{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicateID
		}

		d := model.KpiDefinition{
			ID:            id,
			TenantID:      scopeID,
			Agent:         in.Agent,
			Category:      in.Category,
			Name:          in.Name,
			Unit:          in.Unit,
			DefaultTarget: in.DefaultTarget,
			BenchmarkMin:  in.BenchmarkMin,
			BenchmarkMax:  in.BenchmarkMax,
			ParentKpiID:   &parent.ID,
			Level:         parent.Level + 1,
			Description:   in.Description,
		}
		if err := tx.Create(&d).Error; err != nil {
			return err
		}
		def = &d
		return nil
	})
	if err != nil {
		return nil, err
	}

	prometheus.RecordKpiOperation("add")
	return def, nil
}

// UpdateInput carries the mutable fields of a definition. Nil pointers
// leave the stored value untouched; pointer-to-zero clears it.
type UpdateInput struct {
	Agent         *string  `json:"agent"`
	Category      *string  `json:"category"`
	Name          *string  `json:"name"`
	Unit          *string  `json:"unit"`
	DefaultTarget *float64 `json:"default_target"`
	BenchmarkMin  *float64 `json:"benchmark_min"`
	BenchmarkMax  *float64 `json:"benchmark_max"`
	Description   *string  `json:"description"`
}

// UpdateDefinition edits a node in place. Structural fields (id,
// parent, level) are immutable.
func (s *Service) UpdateDefinition(ctx context.Context, scopeID *string, id string, in UpdateInput) (*model.KpiDefinition, error) {
	defer prometheus.TrackDBOperation("update")(time.Now())

	var def model.KpiDefinition
	q := s.db.WithContext(ctx).Where("id = ?", id)
	if scopeID != nil {
		q = q.Where("tenant_id = ?", *scopeID)
	} else {
		q = q.Where("tenant_id IS NULL")
	}
	if err := q.First(&def).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if in.Agent != nil {
		def.Agent = *in.Agent
	}
	if in.Category != nil {
		def.Category = *in.Category
	}
	if in.Name != nil {
		def.Name = *in.Name
	}
	if in.Unit != nil {
		def.Unit = *in.Unit
	}
	if in.DefaultTarget != nil {
		def.DefaultTarget = in.DefaultTarget
	}
	if in.BenchmarkMin != nil {
		def.BenchmarkMin = in.BenchmarkMin
	}
	if in.BenchmarkMax != nil {
		def.BenchmarkMax = in.BenchmarkMax
	}
	if in.Description != nil {
		def.Description = *in.Description
	}

	if err := s.db.WithContext(ctx).Save(&def).Error; err != nil {
		return nil, fmt.Errorf("updating kpi %s: %w", id, err)
	}

	prometheus.RecordKpiOperation("update")
	return &def, nil
}

// DeleteDefinition removes a leaf node together with its stored targets
// and actuals. Nodes with children cannot be deleted.
func (s *Service) DeleteDefinition(ctx context.Context, scopeID *string, id string) error {
	defer prometheus.TrackDBOperation("delete")(time.Now())

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var def model.KpiDefinition
		q := tx.Where("id = ?", id)
		if scopeID != nil {
			q = q.Where("tenant_id = ?", *scopeID)
		} else {
			q = q.Where("tenant_id IS NULL")
		}
		if err := q.First(&def).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		var children int64
		if err := tx.Model(&model.KpiDefinition{}).
			Where("parent_kpi_id = ?", id).Count(&children).Error; err != nil {
			return err
		}
		if children > 0 {
			return ErrHasChildren
		}

		if err := tx.Where("kpi_id = ?", id).Delete(&model.KpiTarget{}).Error; err != nil {
			return err
		}
		if err := tx.Where("kpi_id = ?", id).Delete(&model.KpiActual{}).Error; err != nil {
			return err
		}
		return tx.Delete(&def).Error
	})
	if err != nil {
		return err
	}

	prometheus.RecordKpiOperation("delete")
	return nil
}

// CreateTemplate builds a new template from a scope's current
// definition set (or the built-in set when fromScope is nil). Item ids
// are rebased onto the new template id.
func (s *Service) CreateTemplate(ctx context.Context, id, name, description string, fromScope *string) (*model.KpiTemplate, error) {
	defer prometheus.TrackDBOperation("insert")(time.Now())

	var defs []model.KpiDefinition
	if fromScope != nil {
		var err error
		if defs, err = s.ListByScope(ctx, fromScope); err != nil {
			return nil, err
		}
		if len(defs) == 0 {
			return nil, fmt.Errorf("scope %s: %w", *fromScope, ErrNotFound)
		}
	} else {
		defs = builtinDefinitions()
	}

	tpl := model.KpiTemplate{ID: id, Name: name, Description: description}
	items := make([]model.KpiTemplateItem, 0, len(defs))
	for _, d := range defs {
		base := d.ID
		if fromScope != nil {
			base = baseID(d.ID, *fromScope)
		}
		item := model.KpiTemplateItem{
			ID:            templateItemID(id, base),
			TemplateID:    id,
			Agent:         d.Agent,
			Category:      d.Category,
			Name:          d.Name,
			Unit:          d.Unit,
			DefaultTarget: d.DefaultTarget,
			BenchmarkMin:  d.BenchmarkMin,
			BenchmarkMax:  d.BenchmarkMax,
			Level:         d.Level,
			Description:   d.Description,
		}
		if d.ParentKpiID != nil {
			parentBase := *d.ParentKpiID
			if fromScope != nil {
				parentBase = baseID(parentBase, *fromScope)
			}
			parent := templateItemID(id, parentBase)
			item.ParentKpiID = &parent
		}
		items = append(items, item)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.KpiTemplate{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicateID
		}
		if err := tx.Create(&tpl).Error; err != nil {
			return err
		}
		return tx.CreateInBatches(items, 100).Error
	})
	if err != nil {
		return nil, err
	}

	prometheus.RecordKpiOperation("create_template")
	return &tpl, nil
}

// CreateTemplateFromItems stores a caller-supplied item set as a new
// template. Item and parent ids arrive unprefixed and are rebased onto
// the template id. Marking the template default clears the flag on the
// previous default.
func (s *Service) CreateTemplateFromItems(ctx context.Context, id, name, description string, isDefault bool, defs []model.KpiDefinition) (*model.KpiTemplate, error) {
	defer prometheus.TrackDBOperation("insert")(time.Now())

	tpl := model.KpiTemplate{ID: id, Name: name, Description: description, IsDefault: isDefault}
	items := make([]model.KpiTemplateItem, 0, len(defs))
	for _, d := range defs {
		item := model.KpiTemplateItem{
			ID:            templateItemID(id, d.ID),
			TemplateID:    id,
			Agent:         d.Agent,
			Category:      d.Category,
			Name:          d.Name,
			Unit:          d.Unit,
			DefaultTarget: d.DefaultTarget,
			BenchmarkMin:  d.BenchmarkMin,
			BenchmarkMax:  d.BenchmarkMax,
			Level:         d.Level,
			Description:   d.Description,
		}
		if d.ParentKpiID != nil {
			parent := templateItemID(id, *d.ParentKpiID)
			item.ParentKpiID = &parent
		}
		items = append(items, item)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.KpiTemplate{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicateID
		}
		if isDefault {
			if err := tx.Model(&model.KpiTemplate{}).
				Where("is_default = ?", true).
				Update("is_default", false).Error; err != nil {
				return err
			}
		}
		if err := tx.Create(&tpl).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		return tx.CreateInBatches(items, 100).Error
	})
	if err != nil {
		return nil, err
	}

	prometheus.RecordKpiOperation("create_template")
	return &tpl, nil
}

// ListTemplates returns all templates with their item counts.
func (s *Service) ListTemplates(ctx context.Context) ([]TemplateSummary, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var tpls []model.KpiTemplate
	if err := s.db.WithContext(ctx).Order("is_default DESC, created_at DESC").Find(&tpls).Error; err != nil {
		return nil, fmt.Errorf("listing templates: %w", err)
	}

	out := make([]TemplateSummary, 0, len(tpls))
	for _, t := range tpls {
		var count int64
		if err := s.db.WithContext(ctx).Model(&model.KpiTemplateItem{}).
			Where("template_id = ?", t.ID).Count(&count).Error; err != nil {
			return nil, err
		}
		out = append(out, TemplateSummary{KpiTemplate: t, ItemCount: int(count)})
	}
	return out, nil
}

// TemplateSummary is a template with its item count.
type TemplateSummary struct {
	model.KpiTemplate
	ItemCount int `json:"item_count"`
}

// GetTemplate returns one template with all its items.
func (s *Service) GetTemplate(ctx context.Context, id string) (*model.KpiTemplate, []model.KpiTemplateItem, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var tpl model.KpiTemplate
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&tpl).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}

	var items []model.KpiTemplateItem
	if err := s.db.WithContext(ctx).Where("template_id = ?", id).
		Order("level, agent, category, id").Find(&items).Error; err != nil {
		return nil, nil, err
	}
	return &tpl, items, nil
}
