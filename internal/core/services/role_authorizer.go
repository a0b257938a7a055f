package services

import (
	"context"
	"fmt"

	"github.com/SscSPs/recon_workbench/internal/apperrors"
	"github.com/SscSPs/recon_workbench/internal/core/domain"
	portssvc "github.com/SscSPs/recon_workbench/internal/core/ports/services"
	"github.com/SscSPs/recon_workbench/internal/middleware"
)

// contextRoleAuthorizer trusts the user ID and role the auth middleware placed on the context.
type contextRoleAuthorizer struct{}

// NewContextRoleAuthorizer returns the default RoleAuthorizer.
func NewContextRoleAuthorizer() portssvc.RoleAuthorizer {
	return contextRoleAuthorizer{}
}

func (contextRoleAuthorizer) RequireRole(ctx context.Context, minimum domain.UserRole) error {
	if _, ok := middleware.GetUserIDFromCtx(ctx); !ok {
		return apperrors.ErrUnauthorized
	}
	role, _ := middleware.GetUserRoleFromCtx(ctx)
	if !domain.HasRequiredRole(role, minimum) {
		return fmt.Errorf("%w: role %q is below %s", apperrors.ErrForbidden, role, minimum)
	}
	return nil
}
