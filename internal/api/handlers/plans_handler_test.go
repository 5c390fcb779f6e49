package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ragops/planner/internal/api/types"
	"github.com/ragops/planner/internal/models"
	"github.com/ragops/planner/internal/params"
	appErr "github.com/ragops/planner/pkg/errors"
)

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

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

const validBody = `{
	"environmentName": "dev",
	"location": "eastus",
	"subscriptionId": "00000000-0000-0000-0000-000000000001",
	"tenantId": "00000000-0000-0000-0000-0000000000aa",
	"principalId": "00000000-0000-0000-0000-0000000000bb",
	"openAiLocation": "eastus",
	"documentIntelligenceLocation": "eastus"
}`

func TestPlansHandler_ResolveNow(t *testing.T) {
	h := NewPlansHandler(&mockPlanService{})

	t.Run("resolves inline", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/plans/resolve", strings.NewReader(validBody))
		rr := httptest.NewRecorder()
		h.ResolveNow(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var resp types.APIResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		require.True(t, resp.Success)

		data, err := json.Marshal(resp.Data)
		require.NoError(t, err)
		var plan struct {
			Token       string            `json:"token"`
			ApplyOrder  []string          `json:"applyOrder"`
			Environment map[string]string `json:"environment"`
		}
		require.NoError(t, json.Unmarshal(data, &plan))
		require.NotEmpty(t, plan.Token)
		require.NotEmpty(t, plan.ApplyOrder)
		require.Equal(t, "azure", plan.Environment["OPENAI_HOST"])
	})

	t.Run("invalid body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/plans/resolve", strings.NewReader("{not json"))
		rr := httptest.NewRecorder()
		h.ResolveNow(rr, req)
		require.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("validation error names the field", func(t *testing.T) {
		body := strings.Replace(validBody, `"dev"`, `""`, 1)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/plans/resolve", strings.NewReader(body))
		rr := httptest.NewRecorder()
		h.ResolveNow(rr, req)

		require.Equal(t, http.StatusBadRequest, rr.Code)
		var resp types.APIResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		require.False(t, resp.Success)
		require.NotNil(t, resp.Error)
		require.Equal(t, string(appErr.CodeValidation), resp.Error.Code)
		require.Equal(t, "EnvironmentName", resp.Error.Field)
	})

	t.Run("configuration conflict", func(t *testing.T) {
		body := strings.Replace(validBody, `"openAiLocation": "eastus"`,
			`"openAiHost": "azure_custom", "openAiLocation": "eastus"`, 1)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/plans/resolve", strings.NewReader(body))
		rr := httptest.NewRecorder()
		h.ResolveNow(rr, req)

		require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		var resp types.APIResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		require.Equal(t, string(appErr.CodeConflict), resp.Error.Code)
	})
}

func TestPlansHandler_Create(t *testing.T) {
	svc := &mockPlanService{}
	h := NewPlansHandler(svc)

	rec := &models.PlanRecord{
		ID:          uuid.New(),
		Environment: "dev",
		Status:      models.PlanStatusPending,
	}
	svc.On("CreatePlan", mock.Anything, mock.MatchedBy(func(s *params.Set) bool {
		return s.EnvironmentName == "dev" && s.DeploymentTarget == params.TargetAppService
	})).Return(rec, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/plans", strings.NewReader(validBody))
	rr := httptest.NewRecorder()
	h.Create(rr, req)

	require.Equal(t, http.StatusAccepted, rr.Code)
	svc.AssertExpectations(t)
}

func TestPlansHandler_Get(t *testing.T) {
	svc := &mockPlanService{}
	h := NewPlansHandler(svc)

	t.Run("invalid id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/plans/not-a-uuid", nil)
		rr := httptest.NewRecorder()
		h.Get(rr, req)
		require.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.New()
		svc.On("GetPlan", mock.Anything, id).
			Return(nil, appErr.New(appErr.CodeNotFound, "plan not found")).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/plans/"+id.String(), nil)
		req = withURLParam(req, "id", id.String())
		rr := httptest.NewRecorder()
		h.Get(rr, req)
		require.Equal(t, http.StatusNotFound, rr.Code)
		svc.AssertExpectations(t)
	})
}

func TestPlansHandler_Env(t *testing.T) {
	svc := &mockPlanService{}
	h := NewPlansHandler(svc)

	t.Run("pending plan has no env", func(t *testing.T) {
		id := uuid.New()
		svc.On("GetPlan", mock.Anything, id).
			Return(&models.PlanRecord{ID: id, Status: models.PlanStatusPending}, nil).Once()

		req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/v1/plans/"+id.String()+"/env", nil), "id", id.String())
		rr := httptest.NewRecorder()
		h.Env(rr, req)
		require.Equal(t, http.StatusConflict, rr.Code)
		svc.AssertExpectations(t)
	})
}
