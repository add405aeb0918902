package main

import (
	"context"
	"log"

	"pulseops/internal/app/bootstrap"
)

// Gateway process entrypoint: the authenticated edge in front of the
// backend services.
func main() {
	log.Println("pulseops gateway starting")
	app, err := bootstrap.BuildGateway()
	if err != nil {
		log.Fatalf("bootstrap gateway failed: %v", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Printf("gateway shutdown close failed: %v", err)
		}
	}()

	if err := app.Run(context.Background()); err != nil {
		log.Fatalf("pulseops gateway stopped with error: %v", err)
	}
}
