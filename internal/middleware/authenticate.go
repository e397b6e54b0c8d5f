package middleware

import (
	"errors"
	"net/http"
	"strings"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"accessgate/internal/auth"
	apperrors "accessgate/internal/errors"
)

// IdentityContextKey is the echo context key holding the *auth.Identity.
const IdentityContextKey = "identity"

// tokenLookup accepts "Authorization: Bearer <token>" and, for older
// clients, the bare token in the same header.
const tokenLookup = "header:" + echo.HeaderAuthorization + ":Bearer ," +
	"header:" + echo.HeaderAuthorization

var (
	errTokenMissing = apperrors.NewHTTPError(http.StatusUnauthorized, "access denied, no token provided", "TOKEN_MISSING")
	errTokenInvalid = apperrors.NewHTTPError(http.StatusForbidden, "invalid token", "TOKEN_INVALID")
)

// Authenticate validates the session token on every request it wraps. A
// request without a token is rejected with 401, an invalid or expired token
// with 403. On success the identity is stored under IdentityContextKey and the
// next handler runs.
func Authenticate(tokens auth.TokenValidator) echo.MiddlewareFunc {
	verify := echojwt.WithConfig(echojwt.Config{
		ContextKey:  IdentityContextKey,
		TokenLookup: tokenLookup,
		ParseTokenFunc: func(_ echo.Context, token string) (interface{}, error) {
			return auth.IdentityFromToken(tokens, strings.TrimSpace(token))
		},
		ErrorHandler: func(_ echo.Context, err error) error {
			var extractErr *echojwt.TokenExtractionError
			if errors.As(err, &extractErr) {
				return errTokenMissing.Echo()
			}
			return errTokenInvalid.Echo()
		},
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		withToken := verify(next)
		return func(c echo.Context) error {
			if strings.TrimSpace(c.Request().Header.Get(echo.HeaderAuthorization)) == "" {
				return errTokenMissing.Echo()
			}
			return withToken(c)
		}
	}
}

// IdentityFrom returns the identity attached by Authenticate.
func IdentityFrom(c echo.Context) (*auth.Identity, bool) {
	identity, ok := c.Get(IdentityContextKey).(*auth.Identity)
	return identity, ok && identity != nil
}
