package tasks

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/ragops/planner/internal/models"
	"github.com/ragops/planner/internal/params"
	"github.com/ragops/planner/internal/planner"
	"github.com/ragops/planner/internal/services"
	appErr "github.com/ragops/planner/pkg/errors"
	"github.com/ragops/planner/pkg/logger"
	"go.uber.org/zap"
)

// ResolveTaskHandler resolves queued plan requests.
type ResolveTaskHandler struct {
	planSvc services.PlanService
}

func NewResolveTaskHandler(planSvc services.PlanService) *ResolveTaskHandler {
	return &ResolveTaskHandler{planSvc: planSvc}
}

func (h *ResolveTaskHandler) HandleResolve(ctx context.Context, t *asynq.Task) error {
	var p services.ResolvePayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		logger.L().Error("invalid resolve task payload", zap.Error(err))
		return err
	}
	id, err := uuid.Parse(p.PlanID)
	if err != nil {
		logger.L().Error("invalid plan id in task", zap.Error(err))
		return err
	}

	logger.L().Info("handling resolve task", zap.String("plan_id", id.String()))

	if err := h.planSvc.MarkResolving(ctx, id); err != nil {
		logger.L().Warn("mark resolving failed", zap.Error(err))
	}

	rec, err := h.planSvc.GetPlan(ctx, id)
	if err != nil {
		logger.L().Error("get plan failed", zap.Error(err))
		return err
	}
	if rec.Status == models.PlanStatusResolved {
		// Retried delivery after a successful run; nothing to redo.
		return nil
	}

	var set params.Set
	if err := json.Unmarshal(rec.Parameters, &set); err != nil {
		logger.L().Error("unmarshal parameters failed", zap.Error(err))
		_ = h.planSvc.MarkFailed(ctx, id, appErr.Wrap(err, appErr.CodeInternal, "unmarshal parameters failed"))
		return err
	}
	set.Normalize()

	plan, err := planner.Resolve(&set)
	if err != nil {
		logger.L().Error("plan resolution failed", zap.Error(err), zap.String("plan_id", id.String()))
		_ = h.planSvc.MarkFailed(ctx, id, err)
		// Validation and conflict failures are terminal: retrying the same
		// parameters cannot succeed.
		if appErr.IsCode(err, appErr.CodeValidation) || appErr.IsCode(err, appErr.CodeConflict) {
			return nil
		}
		return err
	}

	if err := h.planSvc.SaveResolved(ctx, id, plan); err != nil {
		logger.L().Error("save resolved plan failed", zap.Error(err))
		return err
	}

	logger.L().Info("plan resolved",
		zap.String("plan_id", id.String()),
		zap.Int("nodes", len(plan.Nodes)),
		zap.Int("role_bindings", len(plan.RoleBindings)),
	)
	return nil
}
