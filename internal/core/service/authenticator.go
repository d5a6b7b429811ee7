package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"github.com/photoflow/photoflow-api/internal/audit"
	"github.com/photoflow/photoflow-api/internal/core/domain"
	"github.com/photoflow/photoflow-api/internal/core/port"
	"github.com/photoflow/photoflow-api/pkg/observability"
)

// TokenConfig configures where the signing secret comes from
type TokenConfig struct {
	// ParameterName is the secret store entry holding the signing key
	ParameterName string
	// FallbackSecret is used when the secret store is unreachable
	FallbackSecret string
}

// TokenAuthenticator implements port.TokenService. Tokens are
// base64(HMAC-SHA256(secret, email)) and are recomputed on every check, so
// no token table exists anywhere.
type TokenAuthenticator struct {
	secrets port.SecretStore
	cfg     TokenConfig
	audit   *audit.Logger
}

// NewTokenAuthenticator creates a new token authenticator. secrets may be nil,
// in which case only the fallback secret is used.
func NewTokenAuthenticator(secrets port.SecretStore, cfg TokenConfig, auditLogger *audit.Logger) *TokenAuthenticator {
	return &TokenAuthenticator{
		secrets: secrets,
		cfg:     cfg,
		audit:   auditLogger,
	}
}

// Sign computes the token for an email
func Sign(secret, email string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(email))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Issue returns the token for an email
func (a *TokenAuthenticator) Issue(ctx context.Context, email string) (string, error) {
	if email == "" {
		return "", domain.ErrMissingEmail
	}

	secret, err := a.secret(ctx)
	if err != nil {
		a.audit.LogFailure(ctx, audit.EventTokenIssued, email, "issue")
		return "", err
	}

	a.audit.LogSuccess(ctx, audit.EventTokenIssued, email, "issue")
	return Sign(secret, email), nil
}

// Verify recomputes the token for the claimed identity and compares it with
// the presented credential. It never returns an error: any missing input or
// secret failure is a rejection.
func (a *TokenAuthenticator) Verify(ctx context.Context, claim domain.Identity, cred domain.Credential) bool {
	logger := observability.WithContext(ctx)

	if claim.Email == "" || cred.Token == "" {
		logger.Warn("token verification rejected", "reason", "missing token or email")
		a.audit.LogDenied(ctx, audit.EventTokenVerified, claim.Email, "verify")
		return false
	}

	secret, err := a.secret(ctx)
	if err != nil {
		logger.Error("token verification rejected", "error", err)
		a.audit.LogDenied(ctx, audit.EventTokenVerified, claim.Email, "verify")
		return false
	}

	valid := hmac.Equal([]byte(Sign(secret, claim.Email)), []byte(cred.Token))
	if valid {
		a.audit.LogSuccess(ctx, audit.EventTokenVerified, claim.Email, "verify")
	} else {
		a.audit.LogDenied(ctx, audit.EventTokenVerified, claim.Email, "verify")
	}
	return valid
}

// secret fetches the signing key from the secret store, falling back to the
// process-wide value when the store is absent or failing.
func (a *TokenAuthenticator) secret(ctx context.Context) (string, error) {
	if a.secrets != nil && a.cfg.ParameterName != "" {
		value, err := a.secrets.Get(ctx, a.cfg.ParameterName)
		if err == nil && value != "" {
			return value, nil
		}
		observability.WithContext(ctx).Warn("secret store unavailable, using fallback secret",
			"parameter", a.cfg.ParameterName,
			"error", err,
		)
	}

	if a.cfg.FallbackSecret == "" {
		return "", fmt.Errorf("%w: parameter %q", domain.ErrSecretUnavailable, a.cfg.ParameterName)
	}
	return a.cfg.FallbackSecret, nil
}
