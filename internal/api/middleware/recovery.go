package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/plans/internal/api/apierr"
	"github.com/mcoot/plans/internal/middleware"
)

// Recovery turns handler panics into a JSON INTERNAL_ERROR response
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, writePanic)
}

func writePanic(w http.ResponseWriter, _ *http.Request, _ any) {
	apierr.WriteError(w, apierr.NewInternalError())
}
