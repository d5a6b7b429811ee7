package service

import (
	"context"

	"github.com/photoflow/photoflow-api/internal/audit"
	"github.com/photoflow/photoflow-api/internal/core/domain"
	"github.com/photoflow/photoflow-api/internal/core/port"
	"github.com/photoflow/photoflow-api/pkg/observability"
)

// OwnershipVerifier checks that resource keys belong to an identity
type OwnershipVerifier struct {
	store port.OwnershipStore
	audit *audit.Logger
}

// NewOwnershipVerifier creates a new ownership verifier
func NewOwnershipVerifier(store port.OwnershipStore, auditLogger *audit.Logger) *OwnershipVerifier {
	return &OwnershipVerifier{
		store: store,
		audit: auditLogger,
	}
}

// Owns fails closed: a lookup error is treated as "not owned".
func (v *OwnershipVerifier) Owns(ctx context.Context, key domain.ResourceKey, identity domain.Identity) bool {
	logger := observability.WithContext(ctx)

	if key.IsEmpty() || identity.Email == "" {
		return false
	}

	count, err := v.store.Count(ctx, key, identity)
	if err != nil {
		logger.Error("ownership lookup failed", "key", key.Key, "error", err)
		v.audit.LogDenied(ctx, audit.EventOwnershipChecked, identity.Email, key.Key)
		return false
	}

	if count == 0 {
		logger.Info("resource not owned by caller", "key", key.Key)
		v.audit.LogDenied(ctx, audit.EventOwnershipChecked, identity.Email, key.Key)
		return false
	}
	return true
}
