package main

import (
	"context"
	"log"

	"ai-shopchat-be/internal/bootstrap"
	"ai-shopchat-be/internal/config"
	"ai-shopchat-be/internal/server"
	"ai-shopchat-be/internal/tracer"
)

func main() {
	// 0. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewContainer(cfg)
	if err != nil {
		log.Panicf("Unable to bootstrap service: %v", err)
	}
	defer container.Logger.Sync()
	defer func() {
		if container.Publisher != nil {
			container.Publisher.Close()
		}
	}()

	// 3. Initialize Server
	srv := server.New(cfg, container)

	// 4. Run Server
	log.Fatal(srv.Run())
}
