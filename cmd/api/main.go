package main

import (
	"context"
	"log"

	"coopvotes/internal/app/bootstrap"
)

// API process entrypoint.
// Data flow:
// 1) Load config.
// 2) Build app wiring (ports + adapters + use cases + closure queue).
// 3) Start the closure consumer and the HTTP server.
func main() {
	log.Println("coopvotes api starting")
	app, err := bootstrap.BuildAPI()
	if err != nil {
		log.Fatalf("bootstrap api failed: %v", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Printf("api shutdown close failed: %v", err)
		}
	}()

	if err := app.Run(context.Background()); err != nil {
		log.Fatalf("coopvotes api stopped with error: %v", err)
	}
}
