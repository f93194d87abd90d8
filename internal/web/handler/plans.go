package handler

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/plans/internal/model"
	"github.com/mcoot/plans/internal/services/plans"
	"github.com/mcoot/plans/internal/web/middleware"
	"github.com/mcoot/plans/internal/web/templates/layout"
	"github.com/mcoot/plans/internal/web/templates/pages"
)

// PlansHandler handles the plan list and its mutations.
// Routes are mounted behind middleware.Auth, so an account is always present.
type PlansHandler struct {
	plans  *plans.Service
	logger *slog.Logger
}

// NewPlansHandler creates a new PlansHandler
func NewPlansHandler(plansService *plans.Service, logger *slog.Logger) *PlansHandler {
	return &PlansHandler{
		plans:  plansService,
		logger: logger,
	}
}

// List renders the caller's plans
func (h *PlansHandler) List(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetAccount(r.Context())

	account, err := h.plans.List(r.Context(), caller.ID)
	if err != nil {
		renderServiceError(w, r, h.logger, "list plans", err)
		return
	}

	data := pages.PlansData{
		PageData: layout.PageData{
			Title:   "My plans",
			Account: account,
			Flash:   middleware.GetFlash(r.Context()),
		},
		AccountID: string(account.ID),
		Username:  account.DisplayName(),
		Entries:   account.Entries,
	}
	render(w, r, pages.Plans(data))
}

// Submit appends the newPlan form value as-is
func (h *PlansHandler) Submit(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetAccount(r.Context())

	if err := r.ParseForm(); err != nil {
		middleware.RenderError(w, r, http.StatusBadRequest, "Invalid form data")
		return
	}

	if err := h.plans.Append(r.Context(), caller.ID, r.PostFormValue("newPlan")); err != nil {
		renderServiceError(w, r, h.logger, "append plan", err)
		return
	}

	http.Redirect(w, r, "/plans", http.StatusSeeOther)
}

// Delete removes every occurrence of the checkbox value from the account named by userID
func (h *PlansHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetAccount(r.Context())

	if err := r.ParseForm(); err != nil {
		middleware.RenderError(w, r, http.StatusBadRequest, "Invalid form data")
		return
	}

	target := model.AccountID(r.PostFormValue("userID"))
	if _, err := h.plans.Remove(r.Context(), caller.ID, target, r.PostFormValue("checkbox")); err != nil {
		renderServiceError(w, r, h.logger, "remove plan", err)
		return
	}

	http.Redirect(w, r, "/plans", http.StatusSeeOther)
}
