package router

import (
	"campus-scheduler/core/middleware"
	"campus-scheduler/modules/registration/controller"

	"github.com/labstack/echo/v4"
)

type RegistrationRouter struct {
	controller *controller.RegistrationController
}

func NewRegistrationRouter(controller *controller.RegistrationController) *RegistrationRouter {
	return &RegistrationRouter{controller: controller}
}

func (r *RegistrationRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1")

	eventRoutes := v1.Group("/private/events")
	eventRoutes.Use(mw.AuthMiddleware())
	eventRoutes.POST("/:id/register", r.controller.Register)
	eventRoutes.DELETE("/:id/register", r.controller.Unregister)
	eventRoutes.GET("/:id/registration", r.controller.Status)

	listRoutes := v1.Group("/private/registrations")
	listRoutes.Use(mw.AuthMiddleware())
	listRoutes.GET("", r.controller.List)
}
