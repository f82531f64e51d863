package main

import (
	"context"
	"flag"
	"os"

	"github.com/Temutjin2k/ambulance-dispatch/config"
	"github.com/Temutjin2k/ambulance-dispatch/internal/app"
	"github.com/Temutjin2k/ambulance-dispatch/internal/domain/types"
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

	// the agent binary only ever runs one mode
	if err := flag.Set("mode", string(types.DriverAgent)); err != nil {
		panic(err)
	}

	ctx := context.Background()
	log := logger.InitLogger(string(types.DriverAgent), logger.LevelInfo)

	cfg, err := config.NewConfig(*configPath)
	if err != nil {
		log.Error(ctx, "failed to configure driver agent", err)
		os.Exit(2)
	}

	config.PrintConfig(cfg)
	log = logger.InitLogger(string(cfg.Mode), cfg.LogLevel)

	agent, err := app.NewApplication(ctx, *cfg, log)
	if err != nil {
		log.Error(ctx, "failed to init driver agent", err)
		os.Exit(1)
	}

	if err := agent.Run(ctx); err != nil {
		log.Error(ctx, "driver agent stopped", err)
		os.Exit(1)
	}
}
