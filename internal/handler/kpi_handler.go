package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"kpi-dashboard/internal/kpimaster"
	"kpi-dashboard/internal/kpitree"
	"kpi-dashboard/internal/middleware"
	"kpi-dashboard/internal/model"
	"kpi-dashboard/pkg/logger"
	"kpi-dashboard/prometheus"
)

// KpiHandler serves the KPI catalog, stored values and the assembled
// tree.
type KpiHandler struct {
	db   *gorm.DB
	kpis *kpimaster.Service
}

func NewKpiHandler(db *gorm.DB, kpis *kpimaster.Service) *KpiHandler {
	return &KpiHandler{db: db, kpis: kpis}
}

func queryInt(c echo.Context, name, fallback string) int {
	v := c.QueryParam(name)
	if v == "" {
		v = fallback
	}
	n, _ := strconv.Atoi(v)
	return n
}

func periodParams(c echo.Context) (int, int) {
	now := time.Now()
	year := queryInt(c, "year", strconv.Itoa(now.Year()))
	month := queryInt(c, "month", strconv.Itoa(int(now.Month())))
	return year, month
}

// ListMaster returns the caller's KPI catalog.
func (h *KpiHandler) ListMaster(c echo.Context) error {
	log := logger.FromContext(c)

	defs, err := h.kpis.ListByScope(c.Request().Context(), middleware.TenantID(c))
	if err != nil {
		log.Error("Failed to list kpi master", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
	return c.JSON(http.StatusOK, defs)
}

func kpiError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, kpimaster.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, kpimaster.ErrDuplicateID),
		errors.Is(err, kpimaster.ErrHasChildren),
		errors.Is(err, kpimaster.ErrNoParent):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	logger.FromContext(c).Error("KPI operation failed", zap.Error(err))
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
}

// AddMaster adds a custom KPI under an existing parent in the caller's
// catalog.
func (h *KpiHandler) AddMaster(c echo.Context) error {
	var req kpimaster.DefinitionInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	def, err := h.kpis.AddDefinition(c.Request().Context(), middleware.TenantID(c), req)
	if err != nil {
		return kpiError(c, err)
	}
	return c.JSON(http.StatusOK, def)
}

// UpdateMaster edits a KPI in the caller's catalog.
func (h *KpiHandler) UpdateMaster(c echo.Context) error {
	var req kpimaster.UpdateInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	def, err := h.kpis.UpdateDefinition(c.Request().Context(), middleware.TenantID(c), c.Param("kpiId"), req)
	if err != nil {
		return kpiError(c, err)
	}
	return c.JSON(http.StatusOK, def)
}

// DeleteMaster removes a leaf KPI from the caller's catalog.
func (h *KpiHandler) DeleteMaster(c echo.Context) error {
	err := h.kpis.DeleteDefinition(c.Request().Context(), middleware.TenantID(c), c.Param("kpiId"))
	if err != nil {
		return kpiError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "kpi deleted"})
}

// GetTargets returns a project's target rows for one year.
func (h *KpiHandler) GetTargets(c echo.Context) error {
	log := logger.FromContext(c)
	project := middleware.Project(c)
	year := queryInt(c, "year", strconv.Itoa(time.Now().Year()))

	defer prometheus.TrackDBOperation("query")(time.Now())
	var targets []model.KpiTarget
	err := h.db.WithContext(c.Request().Context()).
		Where("project_id = ? AND year = ?", project.ID, year).
		Find(&targets).Error
	if err != nil {
		log.Error("Failed to load targets", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
	return c.JSON(http.StatusOK, targets)
}

// SaveTargets upserts a batch of target rows.
func (h *KpiHandler) SaveTargets(c echo.Context) error {
	log := logger.FromContext(c)
	project := middleware.Project(c)

	var req struct {
		Targets []TargetInput `json:"targets"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := saveTargets(c.Request().Context(), h.db, project.ID, req.Targets); err != nil {
		log.Error("Failed to save targets", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to save targets"})
	}

	log.Info("Targets saved", zap.String("project_id", project.ID), zap.Int("count", len(req.Targets)))
	return c.JSON(http.StatusOK, echo.Map{"message": "targets saved"})
}

// GetActuals returns a project's actual rows, optionally filtered by
// year and month.
func (h *KpiHandler) GetActuals(c echo.Context) error {
	log := logger.FromContext(c)
	project := middleware.Project(c)

	q := h.db.WithContext(c.Request().Context()).Where("project_id = ?", project.ID)
	if year := c.QueryParam("year"); year != "" {
		q = q.Where("year = ?", queryInt(c, "year", ""))
	}
	if month := c.QueryParam("month"); month != "" {
		q = q.Where("month = ?", queryInt(c, "month", ""))
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var actuals []model.KpiActual
	if err := q.Find(&actuals).Error; err != nil {
		log.Error("Failed to load actuals", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
	return c.JSON(http.StatusOK, actuals)
}

// SaveActuals upserts a batch of actual rows, recording the caller as
// the author.
func (h *KpiHandler) SaveActuals(c echo.Context) error {
	log := logger.FromContext(c)
	project := middleware.Project(c)

	var req struct {
		Actuals []ActualInput `json:"actuals"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := saveActuals(c.Request().Context(), h.db, project.ID, middleware.UserID(c), req.Actuals); err != nil {
		log.Error("Failed to save actuals", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to save actuals"})
	}

	log.Info("Actuals saved", zap.String("project_id", project.ID), zap.Int("count", len(req.Actuals)))
	return c.JSON(http.StatusOK, echo.Map{"message": "actuals saved"})
}

// GetTree assembles the KPI hierarchy for one period. The optional
// driver parameter narrows the tree to one subtree while keeping the
// root for context.
func (h *KpiHandler) GetTree(c echo.Context) error {
	log := logger.FromContext(c)
	project := middleware.Project(c)
	year, month := periodParams(c)
	ctx := c.Request().Context()

	defs, err := h.kpis.ListByScope(ctx, project.TenantID)
	if err != nil {
		log.Error("Failed to load kpi definitions", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var targets []model.KpiTarget
	if err := h.db.WithContext(ctx).
		Where("project_id = ? AND year = ?", project.ID, year).
		Find(&targets).Error; err != nil {
		log.Error("Failed to load targets", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
	var actuals []model.KpiActual
	if err := h.db.WithContext(ctx).
		Where("project_id = ? AND year = ? AND month = ?", project.ID, year, month).
		Find(&actuals).Error; err != nil {
		log.Error("Failed to load actuals", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}

	tree := kpitree.Build(defs, targets, actuals, year, month, c.QueryParam("driver"))
	prometheus.TreeBuildCounter.Inc()

	return c.JSON(http.StatusOK, echo.Map{
		"year":  year,
		"month": month,
		"tree":  tree,
	})
}
