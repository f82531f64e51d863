package config

import (
	"flag"
	"fmt"
)

const HelpMessage = `
Ambulance dispatch

Usage:
  dispatch --mode=<mode> [--config-path=config.yaml]
  dispatch --help

Modes:
  ride-service     booking and ride status API for requesters
  driver-service   driver push channel fed from the ride exchange
  auth-service     driver login and token checks
  driver-agent     one driver's session loop and local dashboard

Configuration is read from .env, then the YAML file, then the process
environment, which wins. See config.yaml for every key.
`

func PrintHelp() {
	if HelpMessage != "" {
		fmt.Printf("%s", HelpMessage)
	} else {
		flag.Usage()
	}
}
