package middleware

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/infield/user-service/internal/core/domain"
)

// RequireAccountType lets the request through only when the current user has
// one of the given account types. Must run after CurrentUser.
func RequireAccountType(accountTypes ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(accountTypes))
	for _, t := range accountTypes {
		allowed[t] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, _ := c.Get(ContextKeyUser).(*domain.User)
			if user == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
			}
			if _, ok := allowed[user.AccountType]; !ok {
				return fmt.Errorf("%w: account type %q cannot access this resource", domain.ErrNotAllowed, user.AccountType)
			}
			return next(c)
		}
	}
}
