package main

import (
	"campus-scheduler/core/logger"
	"campus-scheduler/core/server"
)

// @title Campus Scheduler API
// @version 1.0
// @description Scheduling core for the campus management platform: merged timelines, booking conflict checks and event registration.

// @host localhost:7070
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token. Example: "Bearer {token}"

func main() {
	if err := server.Run(); err != nil {
		logger.Error("run server error", err)
	}
}
