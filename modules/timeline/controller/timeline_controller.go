package controller

import (
	"time"

	"campus-scheduler/core/constants"
	"campus-scheduler/core/controller"
	"campus-scheduler/core/errors"
	"campus-scheduler/core/logger"
	"campus-scheduler/core/utils"
	"campus-scheduler/modules/timeline/dto"
	"campus-scheduler/modules/timeline/service"

	"github.com/labstack/echo/v4"
)

type TimelineController struct {
	service service.TimelineService
	controller.BaseController
}

func NewTimelineController(svc service.TimelineService) *TimelineController {
	return &TimelineController{
		service:        svc,
		BaseController: controller.NewBaseController(),
	}
}

// GetTimeline returns the merged calendar for the viewer
// @Summary Merged timeline
// @Description Scheduled classes and campus events merged into one timeline
// @Tags Timeline
// @Security BearerAuth
// @Produce json
// @Param start_date query string false "RFC3339 range start"
// @Param end_date query string false "RFC3339 range end"
// @Success 200 {object} dto.TimelineResponse
// @Failure 401 {object} errors.AppError
// @Router /private/timeline [get]
func (c *TimelineController) GetTimeline(ctx echo.Context) error {
	claims, ok := ctx.Get(constants.ContextTokenData).(*utils.TokenClaims)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	from, to, appErr := parseWindow(ctx.QueryParam("start_date"), ctx.QueryParam("end_date"))
	if appErr != nil {
		return c.BadRequest(appErr.Code, appErr.Message, appErr.Details)
	}

	entries, appErr := c.service.GetTimeline(ctx.Request().Context(), claims.UserID.String(), claims.Role, from, to)
	if appErr != nil {
		logger.Error("TimelineController:GetTimeline:Service:Error", "error", appErr, "user_id", claims.UserID)
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, dto.TimelineResponse{Entries: entries, Count: len(entries)}, "Timeline retrieved successfully")
}

// parseWindow defaults to the four weeks around now when the bounds are
// absent.
func parseWindow(startRaw, endRaw string) (time.Time, time.Time, *errors.AppError) {
	now := time.Now()
	from := now.AddDate(0, 0, -7)
	to := now.AddDate(0, 0, 21)

	if startRaw != "" {
		parsed, err := time.Parse(time.RFC3339, startRaw)
		if err != nil {
			return time.Time{}, time.Time{}, errors.NewAppError(errors.ErrInvalidRequestData, "Invalid start_date", err)
		}
		from = parsed
	}
	if endRaw != "" {
		parsed, err := time.Parse(time.RFC3339, endRaw)
		if err != nil {
			return time.Time{}, time.Time{}, errors.NewAppError(errors.ErrInvalidRequestData, "Invalid end_date", err)
		}
		to = parsed
	}
	if !to.After(from) {
		return time.Time{}, time.Time{}, errors.NewAppError(errors.ErrInvalidRange, "end_date must be after start_date", nil)
	}
	return from, to, nil
}
