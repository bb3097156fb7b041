package main

import (
	"log"

	"github.com/aussiebroadwan/crm/internal/gateway/app"
	"github.com/aussiebroadwan/crm/pkg/envx"
)

func main() {
	if err := envx.LoadDotEnv(); err != nil {
		log.Fatalf("failed to load .env: %v", err)
	}

	application, err := app.New(app.LoadConfig())
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}

	if err := application.Run(); err != nil {
		log.Fatalf("application error: %v", err)
	}
}
