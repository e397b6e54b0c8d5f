package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "accessgate/internal/errors"
)

// PermissionChecker resolves whether a user holds a permission.
type PermissionChecker interface {
	HasPermission(ctx context.Context, userID uuid.UUID, permission string) (bool, error)
}

var errForbidden = apperrors.NewHTTPError(http.StatusForbidden, "access forbidden: insufficient permissions", "FORBIDDEN")

// RequirePermission lets the request continue only when the authenticated
// user's role contains permission. It must run after Authenticate.
func RequirePermission(checker PermissionChecker, permission string, logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, ok := IdentityFrom(c)
			if !ok {
				return errForbidden.Echo()
			}

			allowed, err := checker.HasPermission(c.Request().Context(), identity.UserID, permission)
			if err != nil {
				logger.Error("permission check failed",
					zap.String("user_id", identity.UserID.String()),
					zap.String("permission", permission),
					zap.Error(err),
				)
				return apperrors.MapErrorToHTTP(err).Echo()
			}
			if !allowed {
				return errForbidden.Echo()
			}
			return next(c)
		}
	}
}
