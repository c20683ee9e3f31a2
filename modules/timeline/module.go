package timeline

import (
	"campus-scheduler/core/middleware"
	"campus-scheduler/core/upstream"
	bookingRepository "campus-scheduler/modules/booking/repository"
	"campus-scheduler/modules/timeline/controller"
	"campus-scheduler/modules/timeline/router"
	"campus-scheduler/modules/timeline/service"

	"github.com/labstack/echo/v4"
)

func Init(e *echo.Echo, client upstream.Client, overlay *bookingRepository.OverlayRepository) {
	// Initialize layers
	mergeSvc := service.NewMergeService()
	timelineSvc := service.NewTimelineService(client, mergeSvc, overlay)
	timelineController := controller.NewTimelineController(timelineSvc)

	mw := middleware.NewMiddleware()

	// Setup routes
	router.NewTimelineRouter(timelineController).Setup(e, mw)
}
