package service

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/makkenzo/feedbackhub-api/internal/config"
	"github.com/makkenzo/feedbackhub-api/internal/ierr"
	"go.uber.org/zap"
)

// SessionClaims are the identity provider claims the dashboard relies on.
type SessionClaims struct {
	Subject       string   `json:"sub"`
	Email         string   `json:"email"`
	EmailVerified bool     `json:"email_verified"`
	Name          string   `json:"name"`
	Audience      []string `json:"-"`
}

// TokenValidator turns a bearer token into session claims.
type TokenValidator interface {
	ValidateToken(ctx context.Context, rawToken string) (*SessionClaims, error)
}

type AuthService struct {
	verifier *oidc.IDTokenVerifier
	logger   *zap.Logger
}

var _ TokenValidator = (*AuthService)(nil)

func NewAuthService(ctx context.Context, cfg *config.OIDCConfig, logger *zap.Logger) (*AuthService, error) {
	log := logger.Named("AuthService")
	if cfg.IssuerURL == "" {
		return nil, fmt.Errorf("OIDC IssuerURL is required")
	}

	log.Info("Initializing OIDC provider", zap.String("issuer", cfg.IssuerURL))
	provider, err := oidc.NewProvider(ctx, cfg.IssuerURL)
	if err != nil {
		log.Error("Failed to create OIDC provider", zap.String("issuer", cfg.IssuerURL), zap.Error(err))
		return nil, fmt.Errorf("oidc provider setup failed: %w", err)
	}

	var discoveryClaims struct {
		JWKSURI string `json:"jwks_uri"`
		Issuer  string `json:"issuer"`
	}
	if err := provider.Claims(&discoveryClaims); err != nil {
		log.Error("Failed to get discovery claims", zap.Error(err))
		return nil, fmt.Errorf("failed to get OIDC discovery claims: %w", err)
	}

	log.Info("Creating OIDC keyset from JWKS URI", zap.String("jwks_uri", discoveryClaims.JWKSURI))
	keySet := oidc.NewRemoteKeySet(ctx, discoveryClaims.JWKSURI)

	return NewAuthServiceWithKeySet(discoveryClaims.Issuer, cfg.ClientID, keySet, logger), nil
}

// NewAuthServiceWithKeySet skips discovery. An empty clientID disables the
// audience check, since session tokens from some providers carry none.
func NewAuthServiceWithKeySet(issuer, clientID string, keySet oidc.KeySet, logger *zap.Logger) *AuthService {
	verifier := oidc.NewVerifier(issuer, keySet, &oidc.Config{
		ClientID:          clientID,
		SkipClientIDCheck: clientID == "",
	})
	return &AuthService{
		verifier: verifier,
		logger:   logger.Named("AuthService"),
	}
}

func (s *AuthService) ValidateToken(ctx context.Context, rawToken string) (*SessionClaims, error) {
	s.logger.Debug("Attempting to validate session token")

	token, err := s.verifier.Verify(ctx, rawToken)
	if err != nil {
		s.logger.Warn("Failed to verify session token", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ierr.ErrInvalidToken, err)
	}

	var claims SessionClaims
	if err := token.Claims(&claims); err != nil {
		s.logger.Error("Failed to extract claims from session token", zap.Error(err))
		return nil, fmt.Errorf("%w: could not unmarshal session token claims: %v", ierr.ErrTokenInvalidClaims, err)
	}

	claims.Subject = token.Subject
	claims.Audience = token.Audience
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: token has no subject", ierr.ErrTokenInvalidClaims)
	}

	s.logger.Debug("Session token validated", zap.String("subject", claims.Subject))
	return &claims, nil
}
