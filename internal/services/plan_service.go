package services

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/ragops/planner/internal/models"
	"github.com/ragops/planner/internal/params"
	"github.com/ragops/planner/internal/repository"
	appErr "github.com/ragops/planner/pkg/errors"
	"github.com/ragops/planner/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// TaskPlanResolve is the asynq task type for background plan resolution.
const TaskPlanResolve = "plan:resolve"

// PlanService manages plan request records and hands resolution off to the
// worker queue.
type PlanService interface {
	CreatePlan(ctx context.Context, set *params.Set) (*models.PlanRecord, error)
	GetPlan(ctx context.Context, planID uuid.UUID) (*models.PlanRecord, error)
	ListPlans(ctx context.Context, environment string, limit int) ([]models.PlanRecord, error)

	// Called by the worker.
	MarkResolving(ctx context.Context, planID uuid.UUID) error
	SaveResolved(ctx context.Context, planID uuid.UUID, plan any) error
	MarkFailed(ctx context.Context, planID uuid.UUID, resolveErr error) error
}

type planService struct {
	planRepo    repository.PlanRepository
	asynqClient *asynq.Client
}

func NewPlanService(planRepo repository.PlanRepository, client *asynq.Client) PlanService {
	return &planService{planRepo: planRepo, asynqClient: client}
}

var _ PlanService = (*planService)(nil)

// ResolvePayload is the task payload for plan resolution tasks.
type ResolvePayload struct {
	PlanID string `json:"plan_id"`
}

func (s *planService) CreatePlan(ctx context.Context, set *params.Set) (*models.PlanRecord, error) {
	set.Normalize()
	if err := set.Validate(); err != nil {
		return nil, err
	}

	raw, err := json.Marshal(set)
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "marshal parameters failed")
	}

	rec := &models.PlanRecord{
		Environment: set.EnvironmentName,
		Status:      models.PlanStatusPending,
		Parameters:  datatypes.JSON(raw),
	}
	if err := s.planRepo.Create(ctx, rec); err != nil {
		return nil, err
	}

	payload, _ := json.Marshal(ResolvePayload{PlanID: rec.ID.String()})
	task := asynq.NewTask(TaskPlanResolve, payload)
	if s.asynqClient == nil {
		logger.L().Warn("asynq client not configured, skipping enqueue", zap.String("plan_id", rec.ID.String()))
	} else {
		if _, err := s.asynqClient.EnqueueContext(ctx, task); err != nil {
			logger.L().Error("enqueue resolve task failed", zap.Error(err), zap.String("plan_id", rec.ID.String()))
			_ = s.planRepo.UpdateStatus(ctx, rec.ID, models.PlanStatusFailed)
			return nil, appErr.Wrap(err, appErr.CodeInternal, "enqueue resolve task failed")
		}
	}

	logger.L().Info("plan created and enqueued",
		zap.String("plan_id", rec.ID.String()),
		zap.String("environment", set.EnvironmentName),
	)
	return rec, nil
}

func (s *planService) GetPlan(ctx context.Context, planID uuid.UUID) (*models.PlanRecord, error) {
	var rec models.PlanRecord
	if err := s.planRepo.GetByID(ctx, planID, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *planService) ListPlans(ctx context.Context, environment string, limit int) ([]models.PlanRecord, error) {
	if environment != "" {
		return s.planRepo.ListByEnvironment(ctx, environment)
	}
	return s.planRepo.ListRecent(ctx, limit)
}

func (s *planService) MarkResolving(ctx context.Context, planID uuid.UUID) error {
	return s.planRepo.UpdateStatus(ctx, planID, models.PlanStatusResolving)
}

func (s *planService) SaveResolved(ctx context.Context, planID uuid.UUID, plan any) error {
	raw, err := json.Marshal(plan)
	if err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "marshal resolved plan failed")
	}
	return s.planRepo.SaveResolved(ctx, planID, datatypes.JSON(raw))
}

func (s *planService) MarkFailed(ctx context.Context, planID uuid.UUID, resolveErr error) error {
	code := string(appErr.CodeUnknown)
	msg := resolveErr.Error()
	var ae *appErr.AppError
	if errors.As(resolveErr, &ae) {
		code = string(ae.Code)
		msg = ae.Message
	}
	return s.planRepo.SaveFailure(ctx, planID, code, msg)
}
