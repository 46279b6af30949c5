package handler

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"kpi-dashboard/internal/model"
	"kpi-dashboard/prometheus"
)

// TargetInput is one target row in save and import payloads. A nil
// month sets the annual target.
type TargetInput struct {
	KpiID       string  `json:"kpi_id"`
	TargetValue float64 `json:"target_value"`
	Year        int     `json:"year"`
	Month       *int    `json:"month"`
}

// ActualInput is one actual row in save and import payloads.
type ActualInput struct {
	KpiID       string  `json:"kpi_id"`
	ActualValue float64 `json:"actual_value"`
	Year        int     `json:"year"`
	Month       int     `json:"month"`
}

// saveTargets upserts target rows one by one, each in its own short
// transaction, so a retry after a partial failure converges.
//
// The upsert is a find-then-save rather than ON CONFLICT because the
// period index treats NULL months as distinct rows on Postgres; a
// conflict clause would stack duplicate annual targets instead of
// replacing them.
func saveTargets(ctx context.Context, db *gorm.DB, projectID string, items []TargetInput) error {
	for _, item := range items {
		err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			q := tx.Where("project_id = ? AND kpi_id = ? AND year = ?", projectID, item.KpiID, item.Year)
			if item.Month == nil {
				q = q.Where("month IS NULL")
			} else {
				q = q.Where("month = ?", *item.Month)
			}

			var existing model.KpiTarget
			err := q.First(&existing).Error
			switch {
			case err == nil:
				existing.TargetValue = item.TargetValue
				return tx.Save(&existing).Error
			case errors.Is(err, gorm.ErrRecordNotFound):
				return tx.Create(&model.KpiTarget{
					ProjectID:   projectID,
					KpiID:       item.KpiID,
					TargetValue: item.TargetValue,
					Year:        item.Year,
					Month:       item.Month,
				}).Error
			default:
				return err
			}
		})
		if err != nil {
			return err
		}
		prometheus.RecordValueSave("target")
	}
	return nil
}

// saveActuals upserts actual rows on the period key, replacing the
// value and recording who wrote it.
func saveActuals(ctx context.Context, db *gorm.DB, projectID, updatedBy string, items []ActualInput) error {
	for _, item := range items {
		row := model.KpiActual{
			ProjectID:   projectID,
			KpiID:       item.KpiID,
			ActualValue: item.ActualValue,
			Year:        item.Year,
			Month:       item.Month,
			UpdatedBy:   updatedBy,
			UpdatedAt:   time.Now(),
		}
		err := db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "project_id"}, {Name: "kpi_id"}, {Name: "year"}, {Name: "month"},
			},
			DoUpdates: clause.AssignmentColumns([]string{"actual_value", "updated_by", "updated_at"}),
		}).Create(&row).Error
		if err != nil {
			return err
		}
		prometheus.RecordValueSave("actual")
	}
	return nil
}
