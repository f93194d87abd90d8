package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/mcoot/plans/internal/model"
	"github.com/mcoot/plans/internal/services/auth"
	"github.com/mcoot/plans/internal/services/session"
	"github.com/mcoot/plans/internal/web/middleware"
	"github.com/mcoot/plans/internal/web/templates/layout"
	"github.com/mcoot/plans/internal/web/templates/pages"
)

// AuthHandler handles local login, registration and logout
type AuthHandler struct {
	authService *auth.Service
	sessions    *session.Manager
	logger      *slog.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *auth.Service, sessions *session.Manager, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		sessions:    sessions,
		logger:      logger,
	}
}

// LoginPage renders the login page
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if middleware.GetAccount(r.Context()) != nil {
		http.Redirect(w, r, "/plans", http.StatusSeeOther)
		return
	}

	data := pages.LoginData{
		PageData: layout.PageData{
			Title: "Log in",
			Flash: middleware.GetFlash(r.Context()),
		},
	}
	render(w, r, pages.Login(data))
}

// RegisterPage renders the registration page
func (h *AuthHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	if middleware.GetAccount(r.Context()) != nil {
		http.Redirect(w, r, "/plans", http.StatusSeeOther)
		return
	}

	data := pages.RegisterData{
		PageData: layout.PageData{
			Title: "Register",
			Flash: middleware.GetFlash(r.Context()),
		},
	}
	render(w, r, pages.Register(data))
}

// Login handles login form submission
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		middleware.SetFlash(w, "error", "Invalid form data")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	account, err := h.authService.Login(r.Context(), r.PostFormValue("username"), r.PostFormValue("password"))
	if err != nil {
		if errors.Is(err, model.ErrStoreUnavailable) {
			h.logger.Error("login failed", slog.String("error", err.Error()))
			middleware.RenderError(w, r, http.StatusInternalServerError, "We could not sign you in right now. Please try again.")
			return
		}
		middleware.SetFlash(w, "error", "Invalid username or password")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	h.startSession(w, r, account)
}

// Register handles registration form submission
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		middleware.SetFlash(w, "error", "Invalid form data")
		http.Redirect(w, r, "/register", http.StatusSeeOther)
		return
	}

	account, err := h.authService.Register(r.Context(), r.PostFormValue("username"), r.PostFormValue("password"))
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrDuplicateUsername):
			middleware.SetFlash(w, "error", "That username is already taken")
		case errors.Is(err, auth.ErrInvalidInput):
			middleware.SetFlash(w, "error", "Username and password are required")
		default:
			h.logger.Error("registration failed", slog.String("error", err.Error()))
			middleware.RenderError(w, r, http.StatusInternalServerError, "We could not create your account right now. Please try again.")
			return
		}
		http.Redirect(w, r, "/register", http.StatusSeeOther)
		return
	}

	h.startSession(w, r, account)
}

// Logout invalidates the session and clears the cookie
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Invalidate(r.Context(), middleware.SessionToken(r)); err != nil {
		h.logger.Warn("session invalidation failed", slog.String("error", err.Error()))
	}

	middleware.ClearSessionCookie(w, r)
	middleware.SetFlash(w, "info", "You have been logged out")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, account *model.Account) {
	startSession(w, r, h.sessions, h.logger, account)
}

// startSession issues a session for an already verified account and redirects to /plans
func startSession(w http.ResponseWriter, r *http.Request, sessions *session.Manager, logger *slog.Logger, account *model.Account) {
	sess, err := sessions.Issue(r.Context(), account.ID)
	if err != nil {
		logger.Error("session issue failed", slog.String("error", err.Error()))
		middleware.RenderError(w, r, http.StatusInternalServerError, "We could not sign you in right now. Please try again.")
		return
	}

	middleware.SetSessionCookie(w, r, sess.Token, sessions.TTL())
	http.Redirect(w, r, "/plans", http.StatusSeeOther)
}
