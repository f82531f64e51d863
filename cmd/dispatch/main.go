package main

import (
	"context"
	"flag"
	"os"

	"github.com/Temutjin2k/ambulance-dispatch/config"
	"github.com/Temutjin2k/ambulance-dispatch/internal/app"
	"github.com/Temutjin2k/ambulance-dispatch/pkg/logger"
)

var (
	helpFlag   = flag.Bool("help", false, "Show help message")
	configPath = flag.String("config-path", "config.yaml", "Path to the config yaml file")
)

func main() {
	flag.Parse()
	if *helpFlag {
		config.PrintHelp()
		return
	}

	os.Exit(run())
}

func run() int {
	ctx := context.Background()
	log := logger.InitLogger("", logger.LevelDebug)

	cfg, err := config.NewConfig(*configPath)
	if err != nil {
		log.Error(ctx, "failed to configure application", err)
		config.PrintHelp()
		return 2
	}

	config.PrintConfig(cfg)

	log = logger.InitLogger(string(cfg.Mode), cfg.LogLevel)

	application, err := app.NewApplication(ctx, *cfg, log)
	if err != nil {
		log.Error(ctx, "failed to init application", err)
		return 1
	}

	if err = application.Run(ctx); err != nil {
		log.Error(ctx, "failed to run application", err)
		return 1
	}
	return 0
}
