package main

import (
	"log"

	_ "taskapi/docs"
	"taskapi/internal/config"
	"taskapi/internal/server"
)

// @title           Tasks API
// @version         1.0
// @description     CRUD operations for tasks

// @host      localhost:3001
// @BasePath  /

// @schemes http
func main() {
	cfg := config.Load()

	s, err := server.Init(cfg)
	if err != nil {
		log.Fatalf("❌ Server initialization failed: %v", err)
	}

	s.Run()
}
