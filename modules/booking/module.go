package booking

import (
	"campus-scheduler/core/middleware"
	"campus-scheduler/core/mutation"
	"campus-scheduler/core/upstream"
	"campus-scheduler/modules/booking/controller"
	"campus-scheduler/modules/booking/repository"
	"campus-scheduler/modules/booking/router"
	"campus-scheduler/modules/booking/service"
	timelineService "campus-scheduler/modules/timeline/service"

	"github.com/labstack/echo/v4"
)

func Init(e *echo.Echo, client upstream.Client, overlay *repository.OverlayRepository, coordinator *mutation.Coordinator) {
	// Initialize layers
	mergeSvc := timelineService.NewMergeService()
	timelineSvc := timelineService.NewTimelineService(client, mergeSvc, overlay)
	conflictSvc := service.NewConflictService()
	bookingSvc := service.NewBookingService(client, timelineSvc, mergeSvc, conflictSvc, overlay, coordinator)

	ctrl := controller.NewBookingController(bookingSvc)
	mw := middleware.NewMiddleware()

	// Setup routes
	router.NewBookingRouter(ctrl).Setup(e, mw)
}
