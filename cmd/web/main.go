// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"
	"log"

	"github.com/relabs-tech/joypad/internal/app"
	"github.com/relabs-tech/joypad/internal/config"
)

func main() {
	configPath := flag.String("config", "joypad_config.txt", "path to the KEY=VALUE config file")
	flag.Parse()

	log.Println("starting joypad web server (MQTT subscriber)")

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunWeb(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
