package main

import (
	"context"
	"log"

	"github.com/LautaroLeall/Routine-Calendary/internal/cli"
	"github.com/LautaroLeall/Routine-Calendary/internal/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := cli.NewApp(cfg)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
