package main

import (
	"admission-api/core/logger"
	"admission-api/core/server"
)

// @title Admission API
// @version 1.0
// @description API Backend cho hệ thống tư vấn tuyển sinh - đặt lịch hẹn, hỏi đáp và hỗ trợ thí sinh
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@admission-api.edu.vn

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

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
