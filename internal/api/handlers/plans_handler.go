package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/ragops/planner/internal/api/types"
	"github.com/ragops/planner/internal/models"
	"github.com/ragops/planner/internal/params"
	"github.com/ragops/planner/internal/planner"
	"github.com/ragops/planner/internal/services"
	appErr "github.com/ragops/planner/pkg/errors"
)

type PlansHandler struct {
	planSvc services.PlanService
}

func NewPlansHandler(planSvc services.PlanService) *PlansHandler {
	return &PlansHandler{planSvc: planSvc}
}

// Create accepts a parameter set, stores a pending plan record, and enqueues
// background resolution.
func (h *PlansHandler) Create(w http.ResponseWriter, r *http.Request) {
	set := params.Defaults()
	if err := json.NewDecoder(r.Body).Decode(&set); err != nil {
		writeError(w, http.StatusBadRequest, appErr.Wrap(err, appErr.CodeValidation, "invalid request body"))
		return
	}
	rec, err := h.planSvc.CreatePlan(r.Context(), &set)
	if err != nil {
		writeError(w, types.StatusFor(err), err)
		return
	}
	writeJSON(w, http.StatusAccepted, types.APIResponse{Success: true, Data: rec})
}

// ResolveNow resolves a parameter set synchronously without persisting
// anything. The resolver is pure and fast, so this is safe to serve inline.
func (h *PlansHandler) ResolveNow(w http.ResponseWriter, r *http.Request) {
	set := params.Defaults()
	if err := json.NewDecoder(r.Body).Decode(&set); err != nil {
		writeError(w, http.StatusBadRequest, appErr.Wrap(err, appErr.CodeValidation, "invalid request body"))
		return
	}
	set.Normalize()
	plan, err := planner.Resolve(&set)
	if err != nil {
		writeError(w, types.StatusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: plan})
}

func (h *PlansHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, appErr.New(appErr.CodeValidation, "invalid plan id"))
		return
	}
	rec, err := h.planSvc.GetPlan(r.Context(), id)
	if err != nil {
		writeError(w, types.StatusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: rec})
}

func (h *PlansHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	items, err := h.planSvc.ListPlans(r.Context(), r.URL.Query().Get("environment"), limit)
	if err != nil {
		writeError(w, types.StatusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: items, Meta: &types.Meta{Total: len(items)}})
}

// Env renders a resolved plan's environment map as a dotenv document.
func (h *PlansHandler) Env(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, appErr.New(appErr.CodeValidation, "invalid plan id"))
		return
	}
	rec, err := h.planSvc.GetPlan(r.Context(), id)
	if err != nil {
		writeError(w, types.StatusFor(err), err)
		return
	}
	if rec.Status != models.PlanStatusResolved {
		writeError(w, http.StatusConflict, appErr.Newf(appErr.CodeConflict, "plan is %s, not resolved", rec.Status))
		return
	}
	var plan planner.Plan
	if err := json.Unmarshal(rec.ResolvedPlan, &plan); err != nil {
		writeError(w, http.StatusInternalServerError, appErr.Wrap(err, appErr.CodeInternal, "decode resolved plan failed"))
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(plan.RenderEnv()))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, types.APIResponse{Success: false, Error: types.FromAppError(err)})
}
