package controller

import (
	"campus-scheduler/core/constants"
	"campus-scheduler/core/controller"
	"campus-scheduler/core/errors"
	"campus-scheduler/core/logger"
	"campus-scheduler/core/utils"
	"campus-scheduler/modules/booking/dto"
	"campus-scheduler/modules/booking/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type BookingController struct {
	service service.BookingService
	controller.BaseController
}

func NewBookingController(svc service.BookingService) *BookingController {
	return &BookingController{
		service:        svc,
		BaseController: controller.NewBaseController(),
	}
}

// CheckConflicts runs the advisory pre-flight conflict check
// @Summary Check booking conflicts
// @Description Returns timeline entries colliding with the proposed booking
// @Tags Booking
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.BookingProposal true "Proposed booking"
// @Success 200 {object} dto.ConflictCheckResponse
// @Failure 400 {object} errors.AppError
// @Router /private/bookings/check-conflicts [post]
func (b *BookingController) CheckConflicts(c echo.Context) error {
	if _, err := b.userID(c); err != nil {
		return b.ErrorResponse(c, err)
	}

	proposal := new(dto.BookingProposal)
	if err := c.Bind(proposal); err != nil {
		return b.BadRequest(errors.ErrInvalidRequestData, "Invalid request body", err.Error())
	}

	conflicts, appErr := b.service.CheckConflicts(c.Request().Context(), *proposal)
	if appErr != nil {
		return b.ErrorResponse(c, appErr)
	}

	return b.SuccessResponse(c, dto.ConflictCheckResponse{Conflicts: conflicts, Count: len(conflicts)}, "Conflict check complete")
}

// CreateBooking creates a schedule booking with optimistic local state
// @Summary Create booking
// @Tags Booking
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateBookingRequest true "Booking"
// @Success 200 {object} dto.BookingResponse
// @Failure 409 {object} errors.AppError
// @Router /private/bookings [post]
func (b *BookingController) CreateBooking(c echo.Context) error {
	userID, err := b.userID(c)
	if err != nil {
		return b.ErrorResponse(c, err)
	}

	req := new(dto.CreateBookingRequest)
	if err := c.Bind(req); err != nil {
		return b.BadRequest(errors.ErrInvalidRequestData, "Invalid request body", err.Error())
	}
	if c.QueryParam("force") == "true" {
		req.Force = true
	}

	entry, appErr := b.service.Create(c.Request().Context(), userID, req)
	if appErr != nil {
		logger.Error("BookingController:CreateBooking:Service:Error", "error", appErr, "user_id", userID)
		return b.ErrorResponse(c, appErr)
	}

	return b.SuccessResponse(c, dto.BookingResponse{Entry: *entry}, "Booking created successfully")
}

// UpdateBooking reschedules or edits a booking
// @Summary Update booking
// @Tags Booking
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Booking id"
// @Param request body dto.UpdateBookingRequest true "Booking"
// @Success 200 {object} dto.BookingResponse
// @Failure 409 {object} errors.AppError
// @Router /private/bookings/{id} [put]
func (b *BookingController) UpdateBooking(c echo.Context) error {
	userID, err := b.userID(c)
	if err != nil {
		return b.ErrorResponse(c, err)
	}

	req := new(dto.UpdateBookingRequest)
	if err := c.Bind(req); err != nil {
		return b.BadRequest(errors.ErrInvalidRequestData, "Invalid request body", err.Error())
	}
	if c.QueryParam("force") == "true" {
		req.Force = true
	}

	entry, appErr := b.service.Update(c.Request().Context(), userID, c.Param("id"), req)
	if appErr != nil {
		logger.Error("BookingController:UpdateBooking:Service:Error", "error", appErr, "user_id", userID, "booking_id", c.Param("id"))
		return b.ErrorResponse(c, appErr)
	}

	return b.SuccessResponse(c, dto.BookingResponse{Entry: *entry}, "Booking updated successfully")
}

// DeleteBooking removes a booking
// @Summary Delete booking
// @Tags Booking
// @Security BearerAuth
// @Produce json
// @Param id path string true "Booking id"
// @Success 200 {object} map[string]string
// @Router /private/bookings/{id} [delete]
func (b *BookingController) DeleteBooking(c echo.Context) error {
	userID, err := b.userID(c)
	if err != nil {
		return b.ErrorResponse(c, err)
	}

	if appErr := b.service.Delete(c.Request().Context(), userID, c.Param("id")); appErr != nil {
		logger.Error("BookingController:DeleteBooking:Service:Error", "error", appErr, "user_id", userID, "booking_id", c.Param("id"))
		return b.ErrorResponse(c, appErr)
	}

	return b.SuccessResponse(c, nil, "Booking deleted successfully")
}

func (b *BookingController) userID(c echo.Context) (uuid.UUID, *errors.AppError) {
	claims, ok := c.Get(constants.ContextTokenData).(*utils.TokenClaims)
	if !ok {
		return uuid.Nil, errors.NewAppError(errors.ErrUnauthorized, "User not authenticated", nil)
	}
	return claims.UserID, nil
}
