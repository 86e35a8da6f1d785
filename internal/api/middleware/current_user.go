package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/infield/user-service/internal/core/domain"
)

// UserFinder loads users by id.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

// CurrentUser resolves the authenticated subject to its stored user and
// attaches it to the context. Must run after Auth.
func CurrentUser(users UserFinder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, _ := c.Get(ContextKeyUserID).(string)
			if id == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
			}

			user, err := users.FindByID(c.Request().Context(), id)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return echo.NewHTTPError(http.StatusUnauthorized, "account no longer exists")
				}
				return err
			}

			c.Set(ContextKeyUser, user)
			return next(c)
		}
	}
}
