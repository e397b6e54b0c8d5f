package router

import (
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	"accessgate/internal/auth"
	"accessgate/internal/handler"
	"accessgate/internal/middleware"
	"accessgate/internal/model"
)

// Register wires routes and middleware. Each protected route runs the same
// ordered chain: Authenticate, then RequirePermission, then the handler.
func Register(
	e *echo.Echo,
	logger *zap.Logger,
	tokens auth.TokenValidator,
	access middleware.PermissionChecker,
	authHandler *handler.AuthHandler,
	resourceHandler *handler.ResourceHandler,
	healthHandler *handler.HealthHandler,
) {
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(logger))
	e.Use(echomw.Recover())

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", healthHandler.Live)
	e.GET("/readyz", healthHandler.Ready)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Public routes
	authGroup := e.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)

	// Secured routes (require a valid session token and a permission)
	resource := e.Group("/resource", middleware.Authenticate(tokens))
	resource.GET("/read", resourceHandler.Read,
		middleware.RequirePermission(access, model.PermissionRead, logger))
	resource.POST("/write", resourceHandler.Write,
		middleware.RequirePermission(access, model.PermissionWrite, logger))
	resource.DELETE("/delete", resourceHandler.Delete,
		middleware.RequirePermission(access, model.PermissionDelete, logger))
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
