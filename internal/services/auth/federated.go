package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/mcoot/plans/internal/model"
)

const (
	// GoogleUserInfoURL returns the signed-in user's profile including "sub"
	GoogleUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

	defaultProviderTimeout  = 10 * time.Second
	maxUserInfoResponseSize = 1 << 20
)

// ProviderConfig configures the Google OAuth2 sign-in
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string
	Scopes       []string

	// Endpoint overrides (tests, other providers); Google when empty
	AuthURL     string
	TokenURL    string
	UserInfoURL string

	HTTPClient *http.Client
}

// DefaultProviderConfig returns Google defaults
func DefaultProviderConfig() ProviderConfig {
	return ProviderConfig{
		CallbackURL: "http://localhost:3000/auth/google/plans",
		Scopes:      []string{"profile"},
		UserInfoURL: GoogleUserInfoURL,
	}
}

// Bridge exchanges an authorization code for a provider subject and maps it to an account
type Bridge struct {
	oauth       *oauth2.Config
	userInfoURL string
	httpClient  *http.Client
	service     *Service
	logger      *slog.Logger
}

type userInfo struct {
	Subject string `json:"sub"`
}

// NewBridge creates a federated identity Bridge
func NewBridge(cfg ProviderConfig, service *Service, logger *slog.Logger) *Bridge {
	defaults := DefaultProviderConfig()
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = defaults.Scopes
	}
	if cfg.UserInfoURL == "" {
		cfg.UserInfoURL = defaults.UserInfoURL
	}
	if cfg.CallbackURL == "" {
		cfg.CallbackURL = defaults.CallbackURL
	}

	endpoint := google.Endpoint
	if cfg.AuthURL != "" {
		endpoint.AuthURL = cfg.AuthURL
	}
	if cfg.TokenURL != "" {
		endpoint.TokenURL = cfg.TokenURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultProviderTimeout}
	}

	return &Bridge{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.CallbackURL,
			Scopes:       cfg.Scopes,
			Endpoint:     endpoint,
		},
		userInfoURL: cfg.UserInfoURL,
		httpClient:  httpClient,
		service:     service,
		logger:      logger,
	}
}

// Enabled reports whether a client id is configured
func (b *Bridge) Enabled() bool {
	return b.oauth.ClientID != ""
}

// AuthCodeURL returns the provider authorization URL carrying state
func (b *Bridge) AuthCodeURL(state string) string {
	return b.oauth.AuthCodeURL(state)
}

// Exchange trades an authorization code for the provider subject id
func (b *Bridge) Exchange(ctx context.Context, code string) (string, error) {
	if code == "" {
		return "", fmt.Errorf("%w: missing authorization code", ErrIdentityProvider)
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, b.httpClient)

	token, err := b.oauth.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("%w: token exchange: %w", ErrIdentityProvider, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.userInfoURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrIdentityProvider, err)
	}

	resp, err := b.oauth.Client(ctx, token).Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: userinfo request: %w", ErrIdentityProvider, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: userinfo returned HTTP %d", ErrIdentityProvider, resp.StatusCode)
	}

	var info userInfo
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxUserInfoResponseSize)).Decode(&info); err != nil {
		return "", fmt.Errorf("%w: decode userinfo: %w", ErrIdentityProvider, err)
	}
	if info.Subject == "" {
		return "", fmt.Errorf("%w: userinfo has no subject", ErrIdentityProvider)
	}

	return info.Subject, nil
}

// Authenticate completes the callback: code -> subject -> account
func (b *Bridge) Authenticate(ctx context.Context, code string) (*model.Account, error) {
	subject, err := b.Exchange(ctx, code)
	if err != nil {
		b.logger.Warn("federated sign-in failed", slog.String("error", err.Error()))
		return nil, err
	}
	return b.service.FindOrCreateFederated(ctx, subject)
}
