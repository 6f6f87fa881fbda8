package main

import (
	"log"

	_ "todoshare/docs"
	"todoshare/internal/config"
	"todoshare/internal/server"
)

// @title           Todoshare API
// @version         1.0
// @description     API for personal tasks, sharing them with friends and groups, and due-date reminders.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @schemes http
func main() {
	cfg := config.Load()

	s, err := server.Init(cfg)
	if err != nil {
		log.Fatalf("❌ Server initialization failed: %v", err)
	}

	s.Run()
}
