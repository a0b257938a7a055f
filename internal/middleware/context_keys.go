package middleware

import (
	"context"

	"github.com/SscSPs/recon_workbench/internal/core/domain"
	"github.com/gin-gonic/gin"
)

// Keys for the authenticated actor stored in the request context.
const (
	userIDKey   = contextKey("userID")
	userRoleKey = contextKey("userRole")
)

// WithActor returns a copy of ctx carrying the authenticated user's ID and firm role.
func WithActor(ctx context.Context, userID string, role domain.UserRole) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, userRoleKey, role)
}

// GetUserIDFromCtx retrieves the authenticated user ID from a standard context.
func GetUserIDFromCtx(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok && userID != ""
}

// GetUserRoleFromCtx retrieves the authenticated user's firm role from a standard context.
func GetUserRoleFromCtx(ctx context.Context) (domain.UserRole, bool) {
	role, ok := ctx.Value(userRoleKey).(domain.UserRole)
	return role, ok && role != ""
}

// GetUserIDFromContext retrieves the authenticated user ID from the Gin context.
// It returns the user ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	return GetUserIDFromCtx(c.Request.Context())
}
