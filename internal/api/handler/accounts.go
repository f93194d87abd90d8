package handler

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/plans/internal/api/middleware"
	"github.com/mcoot/plans/internal/api/request"
	"github.com/mcoot/plans/internal/api/response"
	"github.com/mcoot/plans/internal/model"
	"github.com/mcoot/plans/internal/services/auth"
	"github.com/mcoot/plans/internal/services/session"
)

// AccountHandler handles account endpoints
type AccountHandler struct {
	authService *auth.Service
	sessions    *session.Manager
	logger      *slog.Logger
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(authService *auth.Service, sessions *session.Manager, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		authService: authService,
		sessions:    sessions,
		logger:      logger,
	}
}

// Register handles POST /api/v1/accounts/register
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if err := decode(r, &req); err != nil {
		writeError(w, h.logger, "register", err)
		return
	}

	account, err := h.authService.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, h.logger, "register", err)
		return
	}

	h.issue(w, r, http.StatusCreated, account)
}

// Login handles POST /api/v1/accounts/login
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if err := decode(r, &req); err != nil {
		writeError(w, h.logger, "login", err)
		return
	}

	account, err := h.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, h.logger, "login", err)
		return
	}

	h.issue(w, r, http.StatusOK, account)
}

// Logout handles POST /api/v1/accounts/logout
func (h *AccountHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Invalidate(r.Context(), middleware.GetToken(r.Context())); err != nil {
		writeError(w, h.logger, "logout", err)
		return
	}
	response.NoContent(w)
}

// GetMe handles GET /api/v1/accounts/me
func (h *AccountHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	account := middleware.MustGetAccount(r.Context())
	response.JSON(w, http.StatusOK, response.AccountFromModel(account))
}

// issue creates a session for an already verified account
func (h *AccountHandler) issue(w http.ResponseWriter, r *http.Request, status int, account *model.Account) {
	sess, err := h.sessions.Issue(r.Context(), account.ID)
	if err != nil {
		writeError(w, h.logger, "issue session", err)
		return
	}
	response.JSON(w, status, response.AuthResponseFromSession(sess, account))
}
