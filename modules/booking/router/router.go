package router

import (
	"campus-scheduler/core/middleware"
	"campus-scheduler/modules/booking/controller"

	"github.com/labstack/echo/v4"
)

type BookingRouter struct {
	controller *controller.BookingController
}

func NewBookingRouter(ctrl *controller.BookingController) *BookingRouter {
	return &BookingRouter{controller: ctrl}
}

func (r *BookingRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1")

	bookingRoutes := v1.Group("/private/bookings")
	bookingRoutes.Use(mw.AuthMiddleware())

	bookingRoutes.POST("/check-conflicts", r.controller.CheckConflicts)
	bookingRoutes.POST("", r.controller.CreateBooking)
	bookingRoutes.PUT("/:id", r.controller.UpdateBooking)
	bookingRoutes.DELETE("/:id", r.controller.DeleteBooking)
}
