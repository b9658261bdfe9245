// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/teamnifty/nuxbe/internal/app"
	"github.com/teamnifty/nuxbe/internal/config"
)

var (
	version = "1.0.0"
)

func main() {
	var (
		configPath  string
		host        string
		port        int
		storeKind   string
		reset       bool
		showVersion bool
	)

	flag.StringVar(&configPath, "config", "", "Path to config file (default: auto-detect)")
	flag.StringVar(&configPath, "c", "", "Path to config file (short)")
	flag.StringVar(&host, "host", "", "Bridge API host (overrides config)")
	flag.IntVar(&port, "port", 0, "Bridge API port (overrides config)")
	flag.StringVar(&storeKind, "store", "", "Store backend: file, sqlite or memory (overrides config)")
	flag.BoolVar(&reset, "reset", false, "Forget the remembered server and pending deep links on launch")
	flag.BoolVar(&showVersion, "version", false, "Show version")
	flag.BoolVar(&showVersion, "v", false, "Show version (short)")
	flag.Parse()

	if showVersion {
		fmt.Printf("nuxbe-shell %s\n", version)
		os.Exit(0)
	}

	// Find config file if not specified; none is fine
	if configPath == "" {
		if found, err := config.NewLoader().FindConfig(); err == nil {
			configPath = found
		}
	}
	if configPath != "" {
		log.Printf("Using config: %s", configPath)
	} else {
		log.Printf("No config file found, using defaults and environment")
	}

	application, err := app.New(app.Options{
		ConfigPath: configPath,
		Host:       host,
		Port:       port,
		Store:      storeKind,
		Reset:      reset,
		Version:    version,
	})
	if err != nil {
		log.Fatalf("Failed to create app: %v", err)
	}

	if err := application.Run(context.Background()); err != nil {
		log.Fatalf("App error: %v", err)
	}
}
