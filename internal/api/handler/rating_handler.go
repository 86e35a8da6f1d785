package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/infield/user-service/internal/api/metrics"
	"github.com/infield/user-service/internal/core/ports"
)

// RatingHandler serves agronomist ratings.
type RatingHandler struct {
	service ports.RatingService
}

func NewRatingHandler(service ports.RatingService) *RatingHandler {
	return &RatingHandler{service: service}
}

// Rate handles POST /v1/users/:id/rating.
//
// @Summary      Rate an agronomist
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string       true  "Agronomist id"
// @Param        body  body      rateRequest  true  "Score from 1 to 5"
// @Success      201   {object}  successResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/users/{id}/rating [post]
func (h *RatingHandler) Rate(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req rateRequest
	if err := new(echo.DefaultBinder).BindBody(c, &req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	err = h.service.RateAgronomist(c.Request().Context(), user, c.Param("id"), req.Score)
	metrics.RatingsTotal.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, successResponse{Success: true})
}
