package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/mcoot/plans/internal/dependencies/random"
	"github.com/mcoot/plans/internal/model"
	"github.com/mcoot/plans/internal/services/auth"
	"github.com/mcoot/plans/internal/services/session"
	"github.com/mcoot/plans/internal/web/middleware"
)

const (
	nonceCookieName = "oauth_nonce"
	nonceBytes      = 24
)

// OAuthHandler handles Google sign-in
type OAuthHandler struct {
	bridge   *auth.Bridge
	signer   *auth.StateSigner
	sessions *session.Manager
	random   random.Random
	logger   *slog.Logger
}

// NewOAuthHandler creates a new OAuthHandler
func NewOAuthHandler(bridge *auth.Bridge, signer *auth.StateSigner, sessions *session.Manager, rnd random.Random, logger *slog.Logger) *OAuthHandler {
	return &OAuthHandler{
		bridge:   bridge,
		signer:   signer,
		sessions: sessions,
		random:   rnd,
		logger:   logger,
	}
}

// Begin redirects the browser to the provider's consent screen
func (h *OAuthHandler) Begin(w http.ResponseWriter, r *http.Request) {
	if !h.bridge.Enabled() {
		h.unavailable(w, r)
		return
	}

	nonce := h.random.Token(nonceBytes)
	state, err := h.signer.Sign(nonce)
	if err != nil {
		h.logger.Error("oauth state signing failed", slog.String("error", err.Error()))
		middleware.RenderError(w, r, http.StatusInternalServerError, "Sign in with Google failed. Please try again.")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     nonceCookieName,
		Value:    nonce,
		Path:     "/auth",
		MaxAge:   int(h.signer.TTL().Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.bridge.AuthCodeURL(state), http.StatusFound)
}

// Callback completes sign-in after the provider redirects back
func (h *OAuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	if !h.bridge.Enabled() {
		h.unavailable(w, r)
		return
	}

	nonce := ""
	if cookie, err := r.Cookie(nonceCookieName); err == nil {
		nonce = cookie.Value
	}
	http.SetCookie(w, &http.Cookie{
		Name:     nonceCookieName,
		Value:    "",
		Path:     "/auth",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	query := r.URL.Query()
	if providerErr := query.Get("error"); providerErr != "" {
		h.logger.Info("oauth sign-in declined", slog.String("error", providerErr))
		h.failed(w, r)
		return
	}

	if err := h.signer.Verify(query.Get("state"), nonce); err != nil {
		h.logger.Warn("oauth state rejected", slog.String("error", err.Error()))
		h.failed(w, r)
		return
	}

	account, err := h.bridge.Authenticate(r.Context(), query.Get("code"))
	if err != nil {
		if errors.Is(err, model.ErrStoreUnavailable) {
			h.logger.Error("federated account lookup failed", slog.String("error", err.Error()))
			middleware.RenderError(w, r, http.StatusInternalServerError, "We could not sign you in right now. Please try again.")
			return
		}
		h.failed(w, r)
		return
	}

	startSession(w, r, h.sessions, h.logger, account)
}

func (h *OAuthHandler) unavailable(w http.ResponseWriter, r *http.Request) {
	middleware.SetFlash(w, "error", "Sign in with Google is not available on this server")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *OAuthHandler) failed(w http.ResponseWriter, r *http.Request) {
	middleware.SetFlash(w, "error", "Sign in with Google failed")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
