package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"docchat-be/internal/bootstrap"
	"docchat-be/internal/config"
	"docchat-be/internal/server"
	"docchat-be/internal/tracer"
)

func main() {
	// 1. Initialize Tracer
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 2. Load Configuration
	cfg := config.Load()

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(cfg)
	defer container.Logger.Sync()

	// 4. Start Background Services
	if err := container.ConsumerService.Consume(context.Background()); err != nil {
		log.Fatalf("Failed to start file release consumer: %v", err)
	}
	defer container.ConsumerService.Stop()
	container.CleanupService.Start()
	defer container.CleanupService.Stop()

	// 5. Initialize Server
	srv := server.New(cfg, container)

	// 6. Run Server
	go func() {
		if err := srv.Run(); err != nil {
			log.Fatalf("Server stopped: %v", err)
		}
	}()

	// 7. Wait for shutdown signal, then drain
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	if err := srv.Shutdown(); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}
