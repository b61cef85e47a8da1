package main

import (
	"planwrite/cmd/handlers"
	"planwrite/internal/logger"
)

func main() {
	logger.Init() // Initialize the logger
	handlers.Execute()
}
