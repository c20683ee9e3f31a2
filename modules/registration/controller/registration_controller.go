package controller

import (
	"campus-scheduler/core/constants"
	"campus-scheduler/core/controller"
	"campus-scheduler/core/errors"
	"campus-scheduler/core/logger"
	"campus-scheduler/core/utils"
	"campus-scheduler/modules/registration/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type RegistrationController struct {
	service service.RegistrationService
	controller.BaseController
}

func NewRegistrationController(svc service.RegistrationService) *RegistrationController {
	return &RegistrationController{
		service:        svc,
		BaseController: controller.NewBaseController(),
	}
}

// Register registers the viewer for an event
// @Summary Register for event
// @Tags Registration
// @Security BearerAuth
// @Produce json
// @Param id path string true "Event id"
// @Success 200 {object} dto.RegisterResponse
// @Failure 409 {object} errors.AppError "Another mutation in flight"
// @Router /private/events/{id}/register [post]
func (r *RegistrationController) Register(c echo.Context) error {
	userID, appErr := r.userID(c)
	if appErr != nil {
		return r.ErrorResponse(c, appErr)
	}

	resp, appErr := r.service.Register(c.Request().Context(), userID, c.Param("id"))
	if appErr != nil {
		logger.Error("RegistrationController:Register:Service:Error", "error", appErr, "user_id", userID, "event_id", c.Param("id"))
		return r.ErrorResponse(c, appErr)
	}

	return r.SuccessResponse(c, resp, "Registered successfully")
}

// Unregister removes the viewer's registration
// @Summary Unregister from event
// @Tags Registration
// @Security BearerAuth
// @Produce json
// @Param id path string true "Event id"
// @Success 200 {object} dto.RegisterResponse
// @Failure 409 {object} errors.AppError "Another mutation in flight"
// @Router /private/events/{id}/register [delete]
func (r *RegistrationController) Unregister(c echo.Context) error {
	userID, appErr := r.userID(c)
	if appErr != nil {
		return r.ErrorResponse(c, appErr)
	}

	resp, appErr := r.service.Unregister(c.Request().Context(), userID, c.Param("id"))
	if appErr != nil {
		logger.Error("RegistrationController:Unregister:Service:Error", "error", appErr, "user_id", userID, "event_id", c.Param("id"))
		return r.ErrorResponse(c, appErr)
	}

	return r.SuccessResponse(c, resp, "Unregistered successfully")
}

// Status returns the reconciled registration status for one event
// @Summary Registration status
// @Tags Registration
// @Security BearerAuth
// @Produce json
// @Param id path string true "Event id"
// @Success 200 {object} dto.RegistrationStatusResponse
// @Router /private/events/{id}/registration [get]
func (r *RegistrationController) Status(c echo.Context) error {
	userID, appErr := r.userID(c)
	if appErr != nil {
		return r.ErrorResponse(c, appErr)
	}

	resp := r.service.Status(c.Request().Context(), userID, c.Param("id"))
	return r.SuccessResponse(c, resp, "Registration status retrieved")
}

// List returns all of the viewer's registrations
// @Summary List registrations
// @Tags Registration
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.RegistrationListResponse
// @Router /private/registrations [get]
func (r *RegistrationController) List(c echo.Context) error {
	userID, appErr := r.userID(c)
	if appErr != nil {
		return r.ErrorResponse(c, appErr)
	}

	resp, svcErr := r.service.List(c.Request().Context(), userID)
	if svcErr != nil {
		logger.Error("RegistrationController:List:Service:Error", "error", svcErr, "user_id", userID)
		return r.ErrorResponse(c, svcErr)
	}

	return r.SuccessResponse(c, resp, "Registrations retrieved")
}

func (r *RegistrationController) userID(c echo.Context) (uuid.UUID, *errors.AppError) {
	claims, ok := c.Get(constants.ContextTokenData).(*utils.TokenClaims)
	if !ok {
		return uuid.Nil, errors.NewAppError(errors.ErrUnauthorized, "User not authenticated", nil)
	}
	return claims.UserID, nil
}
