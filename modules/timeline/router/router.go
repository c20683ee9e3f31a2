package router

import (
	"campus-scheduler/core/middleware"
	"campus-scheduler/modules/timeline/controller"

	"github.com/labstack/echo/v4"
)

type TimelineRouter struct {
	controller *controller.TimelineController
}

func NewTimelineRouter(controller *controller.TimelineController) *TimelineRouter {
	return &TimelineRouter{controller: controller}
}

func (r *TimelineRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1")

	timelineRoutes := v1.Group("/private/timeline")
	timelineRoutes.Use(mw.AuthMiddleware())
	timelineRoutes.GET("", r.controller.GetTimeline)
}
