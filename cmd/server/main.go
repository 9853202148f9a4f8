package main

import (
	"context"
	"log"

	"github.com/storerate/storerate/internal/server"
	"github.com/storerate/storerate/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	app, err := server.NewApp(cfg)
	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
