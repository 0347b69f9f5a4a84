package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"porosity-hmi/internal/app"
)

func main() {
	application, err := app.NewApp()
	if err != nil {
		log.Fatalf("Failed to initialize server: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = application.Run(ctx)
	stop()
	application.Close()

	if err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
