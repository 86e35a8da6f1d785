package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/infield/user-service/internal/api/middleware"
	"github.com/infield/user-service/internal/core/domain"
)

// currentUser returns the user attached by the CurrentUser middleware. A
// missing user means the route was registered without the auth chain.
func currentUser(c echo.Context) (*domain.User, error) {
	user, _ := c.Get(middleware.ContextKeyUser).(*domain.User)
	if user == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return user, nil
}
