// Package main provides dishctl, the operator tool for dishgen databases
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alchemorsel/dishgen/internal/infrastructure/config"
	"github.com/alchemorsel/dishgen/pkg/logger"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const (
	exitCodeSuccess = 0
	exitCodeFailure = 1
	exitCodeUsage   = 2
)

const usage = `Usage: dishctl [-config path] <command> [flags]

Commands:
  migrate up|down|version|force <n>   manage the postgres schema
  rebuild-likes                       recompute every dish's like count
  generate -ingredients a,b,c         print dish names without a database
`

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	global := flag.NewFlagSet("dishctl", flag.ContinueOnError)
	configPath := global.String("config", "", "path to a config file")
	verbose := global.Bool("verbose", false, "log at debug level")
	global.Usage = func() { fmt.Fprint(os.Stderr, usage) }

	if err := global.Parse(args); err != nil {
		return exitCodeUsage
	}
	if global.NArg() == 0 {
		global.Usage()
		return exitCodeUsage
	}

	// generate needs neither config nor a database
	command, rest := global.Arg(0), global.Args()[1:]
	if command == "generate" {
		return runGenerate(rest, os.Stdout)
	}

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return exitCodeFailure
	}

	level := cfg.App.LogLevel
	if *verbose {
		level = "debug"
	}
	log, err := logger.New(logger.Config{Level: level, Format: "console", OutputPaths: []string{"stderr"}})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		return exitCodeFailure
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	switch command {
	case "migrate":
		err = runMigrate(ctx, cfg, log, rest)
	case "rebuild-likes":
		err = runRebuildLikes(ctx, cfg, log)
	default:
		global.Usage()
		return exitCodeUsage
	}

	if err != nil {
		log.Error("Command failed", zap.String("command", command), zap.Error(err))
		return exitCodeFailure
	}
	return exitCodeSuccess
}

func splitIngredients(list string) []string {
	var names []string
	for _, part := range strings.Split(list, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func commandTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, 10*time.Minute)
}
