package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/rs/zerolog"
	"golang.org/x/term"

	"anycode/internal/config"
	"anycode/internal/helper"
	"anycode/internal/tools"
)

var (
	debugMode   = flag.Bool("d", false, "Enable debug mode")
	logFile     = flag.String("log-file", "", "Log file path (logs disabled by default)")
	configFile  = flag.String("c", "config.json", "Configuration file path")
	printSchema = flag.Bool("schema", false, "Print tool definitions as JSON and exit")
	noHelpers   = flag.Bool("no-helpers", false, "Do not start helper servers")
)

func main() {
	flag.Parse()

	logger := initLogger(*debugMode, *logFile)
	logger.Info().Msg("Anycode tool engine starting")

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load config")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	cfg.Apply()
	if cfg.LogFile != "" && *logFile == "" {
		logger = initLogger(*debugMode, cfg.LogFile)
	}

	registry := tools.NewRegistry(logger)

	if *printSchema {
		data, err := json.MarshalIndent(registry.OpenAITools(), "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
		return
	}

	ctx := context.Background()
	if !*noHelpers {
		manager := helper.NewManager(logger, cfg.HelperSpecs())
		if err := manager.Start(ctx); err != nil {
			// Helpers are collaborators, not prerequisites: tool execution
			// works without them.
			logger.Warn().Err(err).Msg("Helper servers unavailable")
		}
		defer manager.Stop()
	}

	if term.IsTerminal(int(os.Stdin.Fd())) {
		runREPL(ctx, logger, registry)
		return
	}
	runStream(ctx, logger, registry)
}

func initLogger(debug bool, logFilePath string) zerolog.Logger {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	var output io.Writer
	if logFilePath != "" {
		file, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			log.Fatalf("Failed to open log file: %v", err)
		}
		output = file
	} else {
		output = io.Discard
	}

	return zerolog.New(output).With().Timestamp().Logger()
}
