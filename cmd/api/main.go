package main

import (
	"context"
	"log"

	"github.com/Apurer/go-gin-marketplace/internal/app/api"
	"github.com/Apurer/go-gin-marketplace/internal/app/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	if err := api.Run(context.Background(), cfg); err != nil {
		log.Fatalf("marketplace API exited: %v", err)
	}
}
