package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/mcoot/plans/internal/api/apierr"
)

const maxBodySize = 1 << 20

// writeError logs server-side failures and writes the JSON error
func writeError(w http.ResponseWriter, logger *slog.Logger, op string, err error) {
	if apierr.Status(err) >= http.StatusInternalServerError {
		logger.Error(op+" failed", slog.String("error", err.Error()))
	}
	apierr.WriteError(w, err)
}

// decode reads a JSON body into v
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	if err := dec.Decode(v); err != nil {
		return apierr.NewInvalidRequestError("invalid request body")
	}
	return nil
}
