package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ResourceHandler serves the protected resource operations. Access control
// happens entirely in the middleware chain in front of it.
type ResourceHandler struct{}

// NewResourceHandler creates a resource handler.
func NewResourceHandler() *ResourceHandler {
	return &ResourceHandler{}
}

// Read godoc
// @Summary Read the resource
// @Tags resource
// @Produce json
// @Security BearerAuth
// @Success 200 {object} MessageResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /resource/read [get]
func (h *ResourceHandler) Read(c echo.Context) error {
	return c.JSON(http.StatusOK, MessageResponse{Message: "resource read successfully"})
}

// Write godoc
// @Summary Write the resource
// @Tags resource
// @Produce json
// @Security BearerAuth
// @Success 200 {object} MessageResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /resource/write [post]
func (h *ResourceHandler) Write(c echo.Context) error {
	return c.JSON(http.StatusOK, MessageResponse{Message: "resource written successfully"})
}

// Delete godoc
// @Summary Delete the resource
// @Tags resource
// @Produce json
// @Security BearerAuth
// @Success 200 {object} MessageResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /resource/delete [delete]
func (h *ResourceHandler) Delete(c echo.Context) error {
	return c.JSON(http.StatusOK, MessageResponse{Message: "resource deleted successfully"})
}
