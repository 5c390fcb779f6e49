package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/ragops/planner/internal/models"
	appErr "github.com/ragops/planner/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PlanRepository interface {
	BaseRepository[models.PlanRecord]
	ListRecent(ctx context.Context, limit int) ([]models.PlanRecord, error)
	ListByEnvironment(ctx context.Context, environment string) ([]models.PlanRecord, error)
	UpdateStatus(ctx context.Context, planID uuid.UUID, status string) error
	SaveResolved(ctx context.Context, planID uuid.UUID, plan datatypes.JSON) error
	SaveFailure(ctx context.Context, planID uuid.UUID, code, message string) error
}

type planRepository struct {
	BaseRepository[models.PlanRecord]
	db *gorm.DB
}

func NewPlanRepository(db *gorm.DB) PlanRepository {
	return &planRepository{BaseRepository: NewBaseRepository[models.PlanRecord](db), db: db}
}

func (r *planRepository) ListRecent(ctx context.Context, limit int) ([]models.PlanRecord, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var out []models.PlanRecord
	if err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list plans failed")
	}
	return out, nil
}

func (r *planRepository) ListByEnvironment(ctx context.Context, environment string) ([]models.PlanRecord, error) {
	var out []models.PlanRecord
	if err := r.db.WithContext(ctx).Where("environment = ?", environment).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list plans by environment failed")
	}
	return out, nil
}

func (r *planRepository) UpdateStatus(ctx context.Context, planID uuid.UUID, status string) error {
	res := r.db.WithContext(ctx).Model(&models.PlanRecord{}).Where("id = ?", planID).Update("status", status)
	if res.Error != nil {
		return appErr.Wrap(res.Error, appErr.CodeInternal, "update plan status failed")
	}
	if res.RowsAffected == 0 {
		return appErr.New(appErr.CodeNotFound, "plan not found")
	}
	return nil
}

func (r *planRepository) SaveResolved(ctx context.Context, planID uuid.UUID, plan datatypes.JSON) error {
	res := r.db.WithContext(ctx).Model(&models.PlanRecord{}).Where("id = ?", planID).Updates(map[string]any{
		"resolved_plan": plan,
		"status":        models.PlanStatusResolved,
		"error_code":    "",
		"error_message": "",
	})
	if res.Error != nil {
		return appErr.Wrap(res.Error, appErr.CodeInternal, "save resolved plan failed")
	}
	if res.RowsAffected == 0 {
		return appErr.New(appErr.CodeNotFound, "plan not found")
	}
	return nil
}

func (r *planRepository) SaveFailure(ctx context.Context, planID uuid.UUID, code, message string) error {
	res := r.db.WithContext(ctx).Model(&models.PlanRecord{}).Where("id = ?", planID).Updates(map[string]any{
		"status":        models.PlanStatusFailed,
		"error_code":    code,
		"error_message": message,
	})
	if res.Error != nil {
		return appErr.Wrap(res.Error, appErr.CodeInternal, "save plan failure failed")
	}
	if res.RowsAffected == 0 {
		return appErr.New(appErr.CodeNotFound, "plan not found")
	}
	return nil
}
