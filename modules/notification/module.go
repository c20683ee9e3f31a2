package notification

import (
	"campus-scheduler/core/cache"
	"campus-scheduler/core/middleware"
	"campus-scheduler/modules/notification/controller"
	"campus-scheduler/modules/notification/repository"
	"campus-scheduler/modules/notification/router"
	"campus-scheduler/modules/notification/service"

	"github.com/labstack/echo/v4"
)

// Init wires the module and returns the service so the mutation
// coordinator can use it as its failure notifier.
func Init(e *echo.Echo, c cache.Cache) *service.NotificationService {
	repo := repository.NewNotificationRepository(c)
	svc := service.NewNotificationService(repo)
	ctrl := controller.NewNotificationController(svc)

	mw := middleware.NewMiddleware()
	router.NewNotificationRouter(ctrl).Setup(e, mw)

	return svc
}
