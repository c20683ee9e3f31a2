package registration

import (
	"campus-scheduler/core/cache"
	"campus-scheduler/core/middleware"
	"campus-scheduler/core/mutation"
	"campus-scheduler/core/upstream"
	"campus-scheduler/modules/registration/controller"
	"campus-scheduler/modules/registration/repository"
	"campus-scheduler/modules/registration/router"
	"campus-scheduler/modules/registration/service"

	"github.com/labstack/echo/v4"
)

func Init(e *echo.Echo, client upstream.Client, c cache.Cache, coordinator *mutation.Coordinator) {
	// Initialize layers
	cacheRepo := repository.NewCacheRepository(c)
	reconciler := service.NewReconciler(cacheRepo)
	registrationSvc := service.NewRegistrationService(client, reconciler, coordinator)

	ctrl := controller.NewRegistrationController(registrationSvc)
	mw := middleware.NewMiddleware()

	// Setup routes
	router.NewRegistrationRouter(ctrl).Setup(e, mw)
}
