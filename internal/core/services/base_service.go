package services

import (
	"context"
	"log/slog"

	"github.com/SscSPs/recon_workbench/internal/apperrors"
	"github.com/SscSPs/recon_workbench/internal/core/domain"
	portssvc "github.com/SscSPs/recon_workbench/internal/core/ports/services"
	"github.com/SscSPs/recon_workbench/internal/middleware"
)

// BaseService provides common functionality for all services
type BaseService struct {
	RoleAuthorizer portssvc.RoleAuthorizer
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	return middleware.GetLoggerFromCtx(ctx)
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

// AuthorizeRole checks that the current actor holds at least the required role.
// Without an authorizer every request is denied.
func (s *BaseService) AuthorizeRole(ctx context.Context, required domain.UserRole) error {
	if s.RoleAuthorizer == nil {
		s.LogError(ctx, apperrors.ErrForbidden, "No role authorizer configured, denying access",
			slog.String("required_role", string(required)))
		return apperrors.ErrForbidden
	}
	if err := s.RoleAuthorizer.RequireRole(ctx, required); err != nil {
		s.GetLogger(ctx).Warn("Actor not authorized",
			slog.String("required_role", string(required)),
			slog.String("error", err.Error()))
		return err
	}
	return nil
}
