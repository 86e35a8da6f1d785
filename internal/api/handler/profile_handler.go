package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/infield/user-service/internal/api/metrics"
	"github.com/infield/user-service/internal/core/ports"
)

// ProfileHandler serves the /v1/users/me routes.
type ProfileHandler struct {
	service ports.ProfileService
}

func NewProfileHandler(service ports.ProfileService) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// GetMe returns the current user.
//
// @Summary      Get own profile
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  userResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/users/me [get]
func (h *ProfileHandler) GetMe(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.service.GetSelf(user))
}

// EditMe applies a partial update to the current user's profile.
//
// @Summary      Edit own profile
// @Description  Shallow-merges the submitted fields. Security fields and skill sets are rejected.
// @Tags         profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      object  true  "Fields to update (firstName, lastName, phone, email, accountType)"
// @Success      201   {object}  userResponse
// @Failure      400   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/users/me [patch]
func (h *ProfileHandler) EditMe(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var edits map[string]any
	if err := new(echo.DefaultBinder).BindBody(c, &edits); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	view, err := h.service.EditSelf(c.Request().Context(), user, edits)
	metrics.ProfileMutationsTotal.WithLabelValues("edit", metrics.Result(err)).Inc()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, view)
}

// DeleteMe permanently deletes the current user.
//
// @Summary      Delete own account
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  successResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/users/me [delete]
func (h *ProfileHandler) DeleteMe(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	err = h.service.DeleteSelf(c.Request().Context(), user)
	metrics.ProfileMutationsTotal.WithLabelValues("delete", metrics.Result(err)).Inc()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, successResponse{Success: true})
}

// AddSkills adds specialties and regions to an agronomist's profile.
//
// @Summary      Add skills
// @Tags         skills
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      addSkillsRequest  true  "Specialties and regions to add"
// @Success      201   {object}  userResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/users/me/skills [post]
func (h *ProfileHandler) AddSkills(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req addSkillsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	view, err := h.service.AddSkills(c.Request().Context(), user, req.Specialties, req.Regions)
	metrics.ProfileMutationsTotal.WithLabelValues("add_skills", metrics.Result(err)).Inc()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, view)
}

// RemoveSpecialty removes one specialty from the current user.
//
// @Summary      Remove a specialty
// @Tags         skills
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      removeSpecialtyRequest  true  "Specialty to remove"
// @Success      201   {object}  userResponse
// @Failure      400   {object}  errorResponse
// @Router       /v1/users/me/skills/specialty [delete]
func (h *ProfileHandler) RemoveSpecialty(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req removeSpecialtyRequest
	if err := new(echo.DefaultBinder).BindBody(c, &req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	view, err := h.service.RemoveSpecialty(c.Request().Context(), user, req.Specialty)
	metrics.ProfileMutationsTotal.WithLabelValues("remove_specialty", metrics.Result(err)).Inc()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, view)
}

// RemoveRegion removes one region from the current user.
//
// @Summary      Remove a region
// @Tags         skills
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      removeRegionRequest  true  "Region to remove"
// @Success      201   {object}  userResponse
// @Failure      400   {object}  errorResponse
// @Router       /v1/users/me/skills/region [delete]
func (h *ProfileHandler) RemoveRegion(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req removeRegionRequest
	if err := new(echo.DefaultBinder).BindBody(c, &req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	view, err := h.service.RemoveRegion(c.Request().Context(), user, req.Region)
	metrics.ProfileMutationsTotal.WithLabelValues("remove_region", metrics.Result(err)).Inc()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, view)
}

// AvailableSpecialties lists the specialties an agronomist can pick from.
//
// @Summary      List available specialties
// @Tags         skills
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  specialtiesResponse
// @Failure      403  {object}  errorResponse
// @Router       /v1/users/me/specialties [get]
func (h *ProfileHandler) AvailableSpecialties(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	specialties, err := h.service.AvailableSpecialties(user)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, specialtiesResponse{Specialties: specialties})
}

// AvailableRegions lists the regions an agronomist can pick from.
//
// @Summary      List available regions
// @Tags         skills
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  regionsResponse
// @Failure      403  {object}  errorResponse
// @Router       /v1/users/me/regions [get]
func (h *ProfileHandler) AvailableRegions(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	regions, err := h.service.AvailableRegions(user)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, regionsResponse{Regions: regions})
}

// RequestPhoneVerification texts a fresh verification code to the user's phone.
//
// @Summary      Send phone verification code
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      202  {object}  messageResponse
// @Failure      400  {object}  errorResponse
// @Failure      429  {object}  errorResponse
// @Router       /v1/users/me/phone/verification [post]
func (h *ProfileHandler) RequestPhoneVerification(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	err = h.service.RequestPhoneVerification(c.Request().Context(), user)
	metrics.PhoneVerificationsTotal.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusAccepted, messageResponse{Message: "verification code sent"})
}

// ConfirmPhone checks a verification code and marks the phone verified.
//
// @Summary      Confirm phone verification code
// @Tags         profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      confirmPhoneRequest  true  "Six digit code"
// @Success      200   {object}  userResponse
// @Failure      400   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/users/me/phone/confirm [post]
func (h *ProfileHandler) ConfirmPhone(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req confirmPhoneRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	view, err := h.service.ConfirmPhone(c.Request().Context(), user, req.Code)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}
