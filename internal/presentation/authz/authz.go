// Package authz holds the role rules shared by the gRPC and REST transports.
package authz

import (
	"context"
	"errors"
	"strings"

	"github.com/ricare/lending/pkg/auth"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("permission denied")
)

// Staff roles may act on any patient's records.
var staffRoles = []string{auth.RoleAdmin, auth.RoleOperator}

// RequireAnyRole passes when the caller holds one of roles.
func RequireAnyRole(ctx context.Context, roles ...string) error {
	claims, ok := auth.ClaimsFromContext(ctx)
	if !ok {
		return ErrUnauthenticated
	}
	if !claims.HasAnyRole(roles...) {
		return ErrForbidden
	}
	return nil
}

// RequireSelfOrStaff passes for staff, or for a caller acting on their own
// ownerID.
func RequireSelfOrStaff(ctx context.Context, ownerID string) error {
	claims, ok := auth.ClaimsFromContext(ctx)
	if !ok {
		return ErrUnauthenticated
	}
	if claims.HasAnyRole(staffRoles...) {
		return nil
	}
	if strings.EqualFold(strings.TrimSpace(ownerID), claims.UserID.String()) {
		return nil
	}
	return ErrForbidden
}

// RequireAuthenticated passes for any caller with valid claims.
func RequireAuthenticated(ctx context.Context) error {
	if _, ok := auth.ClaimsFromContext(ctx); !ok {
		return ErrUnauthenticated
	}
	return nil
}
