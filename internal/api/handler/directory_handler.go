package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/infield/user-service/internal/api/metrics"
	"github.com/infield/user-service/internal/core/domain"
	"github.com/infield/user-service/internal/core/ports"
)

// DirectoryHandler serves read-only lookups over all users.
type DirectoryHandler struct {
	service ports.DirectoryService
}

func NewDirectoryHandler(service ports.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{service: service}
}

// Get handles GET /v1/users/:id.
//
// @Summary      Get a user by id
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  userResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/users/{id} [get]
func (h *DirectoryHandler) Get(c echo.Context) error {
	view, err := h.service.GetUser(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

// Search handles GET /v1/users/search?name=.
//
// @Summary      Search users by name
// @Description  The first word matches first names, the last word (if any) last names, case-insensitively.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        name  query     string  true  "Name to search for"
// @Success      200   {array}   userNameResponse
// @Failure      400   {object}  errorResponse
// @Router       /v1/users/search [get]
func (h *DirectoryHandler) Search(c echo.Context) error {
	users, err := h.service.SearchUsers(c.Request().Context(), c.QueryParam("name"))
	if err != nil {
		return err
	}
	if users == nil {
		users = []domain.UserName{}
	}
	metrics.SearchResults.Observe(float64(len(users)))
	return c.JSON(http.StatusOK, users)
}
