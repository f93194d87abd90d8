package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"github.com/mcoot/plans/internal/model"
	"github.com/mcoot/plans/internal/services/plans"
	"github.com/mcoot/plans/internal/web/middleware"
)

func render(w http.ResponseWriter, r *http.Request, component templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := component.Render(r.Context(), w); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// renderServiceError logs err and renders the matching error page
func renderServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, op string, err error) {
	status, message := http.StatusInternalServerError, "Something went wrong saving your plans. Nothing was changed."
	switch {
	case errors.Is(err, plans.ErrForbidden):
		status, message = http.StatusForbidden, "You can only change your own plans."
	case errors.Is(err, model.ErrAccountNotFound):
		status, message = http.StatusNotFound, "That account does not exist."
	}

	logger.Error(op+" failed",
		slog.String("error", err.Error()),
		slog.Int("status", status),
	)
	middleware.RenderError(w, r, status, message)
}
