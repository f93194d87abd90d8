package handler

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/plans/internal/api/apierr"
	"github.com/mcoot/plans/internal/api/middleware"
	"github.com/mcoot/plans/internal/api/request"
	"github.com/mcoot/plans/internal/api/response"
	"github.com/mcoot/plans/internal/model"
	"github.com/mcoot/plans/internal/services/plans"
)

// PlansHandler handles plan endpoints
type PlansHandler struct {
	plans  *plans.Service
	logger *slog.Logger
}

// NewPlansHandler creates a new plans handler
func NewPlansHandler(plansService *plans.Service, logger *slog.Logger) *PlansHandler {
	return &PlansHandler{
		plans:  plansService,
		logger: logger,
	}
}

// List handles GET /api/v1/plans
func (h *PlansHandler) List(w http.ResponseWriter, r *http.Request) {
	caller := middleware.MustGetAccount(r.Context())

	account, err := h.plans.List(r.Context(), caller.ID)
	if err != nil {
		writeError(w, h.logger, "list plans", err)
		return
	}

	response.JSON(w, http.StatusOK, response.PlansFromModel(account))
}

// Add handles POST /api/v1/plans
func (h *PlansHandler) Add(w http.ResponseWriter, r *http.Request) {
	caller := middleware.MustGetAccount(r.Context())

	var req request.AddPlanRequest
	if err := decode(r, &req); err != nil {
		writeError(w, h.logger, "add plan", err)
		return
	}
	if req.Plan == nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("plan is required"))
		return
	}

	if err := h.plans.Append(r.Context(), caller.ID, *req.Plan); err != nil {
		writeError(w, h.logger, "add plan", err)
		return
	}

	account, err := h.plans.List(r.Context(), caller.ID)
	if err != nil {
		writeError(w, h.logger, "list plans", err)
		return
	}

	response.JSON(w, http.StatusCreated, response.PlansFromModel(account))
}

// Remove handles DELETE /api/v1/plans
func (h *PlansHandler) Remove(w http.ResponseWriter, r *http.Request) {
	caller := middleware.MustGetAccount(r.Context())

	var req request.RemovePlanRequest
	if err := decode(r, &req); err != nil {
		writeError(w, h.logger, "remove plan", err)
		return
	}
	if req.Plan == nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("plan is required"))
		return
	}

	target := model.AccountID(req.AccountID)
	if target == "" {
		target = caller.ID
	}

	removed, err := h.plans.Remove(r.Context(), caller.ID, target, *req.Plan)
	if err != nil {
		writeError(w, h.logger, "remove plan", err)
		return
	}

	account, err := h.plans.List(r.Context(), target)
	if err != nil {
		writeError(w, h.logger, "list plans", err)
		return
	}

	response.JSON(w, http.StatusOK, response.RemovePlans{
		Plans:   response.PlansFromModel(account),
		Removed: removed,
	})
}
