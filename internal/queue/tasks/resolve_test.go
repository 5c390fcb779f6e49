package tasks

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/ragops/planner/internal/models"
	"github.com/ragops/planner/internal/params"
	"github.com/ragops/planner/internal/services"
	"github.com/ragops/planner/pkg/logger"
)

func TestMain(m *testing.M) {
	// Initialize logger for tests (required by tasks)
	_, err := logger.Init("info", "json")
	if err != nil {
		panic("failed to init logger: " + err.Error())
	}
	os.Exit(m.Run())
}

type mockPlanService struct {
	mock.Mock
}

func (m *mockPlanService) CreatePlan(ctx context.Context, set *params.Set) (*models.PlanRecord, error) {
	args := m.Called(ctx, set)
	if v := args.Get(0); v != nil {
		return v.(*models.PlanRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPlanService) GetPlan(ctx context.Context, planID uuid.UUID) (*models.PlanRecord, error) {
	args := m.Called(ctx, planID)
	if v := args.Get(0); v != nil {
		return v.(*models.PlanRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPlanService) ListPlans(ctx context.Context, environment string, limit int) ([]models.PlanRecord, error) {
	args := m.Called(ctx, environment, limit)
	if v := args.Get(0); v != nil {
		return v.([]models.PlanRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPlanService) MarkResolving(ctx context.Context, planID uuid.UUID) error {
	args := m.Called(ctx, planID)
	return args.Error(0)
}

func (m *mockPlanService) SaveResolved(ctx context.Context, planID uuid.UUID, plan any) error {
	args := m.Called(ctx, planID, plan)
	return args.Error(0)
}

func (m *mockPlanService) MarkFailed(ctx context.Context, planID uuid.UUID, resolveErr error) error {
	args := m.Called(ctx, planID, resolveErr)
	return args.Error(0)
}

func validParameters(t *testing.T) datatypes.JSON {
	t.Helper()
	set := params.Defaults()
	set.EnvironmentName = "dev"
	set.Location = "eastus"
	set.SubscriptionID = "00000000-0000-0000-0000-000000000001"
	set.TenantID = "00000000-0000-0000-0000-0000000000aa"
	set.PrincipalID = "00000000-0000-0000-0000-0000000000bb"
	set.OpenAILocation = "eastus"
	set.DocumentIntelligenceLocation = "eastus"
	raw, err := json.Marshal(&set)
	require.NoError(t, err)
	return datatypes.JSON(raw)
}

func resolveTask(t *testing.T, planID uuid.UUID) *asynq.Task {
	t.Helper()
	payload, err := json.Marshal(services.ResolvePayload{PlanID: planID.String()})
	require.NoError(t, err)
	return asynq.NewTask(services.TaskPlanResolve, payload)
}

func TestResolveTaskHandler_HandleResolve(t *testing.T) {
	planID := uuid.New()

	t.Run("successful resolution", func(t *testing.T) {
		svc := &mockPlanService{}
		handler := NewResolveTaskHandler(svc)

		rec := &models.PlanRecord{
			ID:          planID,
			Environment: "dev",
			Status:      models.PlanStatusPending,
			Parameters:  validParameters(t),
		}
		svc.On("MarkResolving", mock.Anything, planID).Return(nil).Once()
		svc.On("GetPlan", mock.Anything, planID).Return(rec, nil).Once()
		svc.On("SaveResolved", mock.Anything, planID, mock.Anything).Return(nil).Once()

		err := handler.HandleResolve(context.Background(), resolveTask(t, planID))
		require.NoError(t, err)
		svc.AssertExpectations(t)
	})

	t.Run("already resolved record is skipped", func(t *testing.T) {
		svc := &mockPlanService{}
		handler := NewResolveTaskHandler(svc)

		rec := &models.PlanRecord{
			ID:     planID,
			Status: models.PlanStatusResolved,
		}
		svc.On("MarkResolving", mock.Anything, planID).Return(nil).Once()
		svc.On("GetPlan", mock.Anything, planID).Return(rec, nil).Once()

		err := handler.HandleResolve(context.Background(), resolveTask(t, planID))
		require.NoError(t, err)
		svc.AssertNotCalled(t, "SaveResolved", mock.Anything, mock.Anything, mock.Anything)
		svc.AssertExpectations(t)
	})

	t.Run("validation failure is terminal", func(t *testing.T) {
		svc := &mockPlanService{}
		handler := NewResolveTaskHandler(svc)

		// Missing required identity fields; resolution cannot succeed on retry.
		set := params.Defaults()
		raw, err := json.Marshal(&set)
		require.NoError(t, err)
		rec := &models.PlanRecord{
			ID:         planID,
			Status:     models.PlanStatusPending,
			Parameters: datatypes.JSON(raw),
		}
		svc.On("MarkResolving", mock.Anything, planID).Return(nil).Once()
		svc.On("GetPlan", mock.Anything, planID).Return(rec, nil).Once()
		svc.On("MarkFailed", mock.Anything, planID, mock.Anything).Return(nil).Once()

		err = handler.HandleResolve(context.Background(), resolveTask(t, planID))
		require.NoError(t, err)
		svc.AssertExpectations(t)
	})

	t.Run("malformed payload", func(t *testing.T) {
		svc := &mockPlanService{}
		handler := NewResolveTaskHandler(svc)

		task := asynq.NewTask(services.TaskPlanResolve, []byte("{not json"))
		err := handler.HandleResolve(context.Background(), task)
		require.Error(t, err)
		svc.AssertNotCalled(t, "MarkResolving", mock.Anything, mock.Anything)
	})
}
