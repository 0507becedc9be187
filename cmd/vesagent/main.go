package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"vesagent/internal/app"
	"vesagent/internal/config"
)

const (
	exitCodeFailure = 1
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// run starts the agent process.
// Params: none.
// Returns: process exit code.
func run() int {
	var (
		configPath string
		showInfo   bool
		checkOnly  bool
	)

	flag.StringVar(&configPath, "config", "config.toml", "path to TOML config file or directory")
	flag.BoolVar(&checkOnly, "check", false, "validate config, print the agent identity and exit")
	flag.BoolVar(&showInfo, "v", false, "show build information")
	flag.BoolVar(&showInfo, "version", false, "show build information")
	flag.Parse()

	if showInfo {
		fmt.Printf("vesagent version=%s commit=%s date=%s\n", version, commit, date)
		return 0
	}
	if checkOnly {
		if err := checkConfig(os.Stdout, configPath); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return exitCodeFailure
		}
		return 0
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, app.Runtime{ConfigPath: configPath, Reload: reloadOnHangup(ctx)}); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return exitCodeFailure
	}

	return 0
}

// checkConfig loads and validates the config without contacting the collector.
// Params: out receives the summary; path config file or directory.
// Returns: load or validation error.
func checkConfig(out io.Writer, path string) error {
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "config ok: source=%s reporting_entity=%s collector=%s%s heartbeat=%s measurement=%t\n",
		cfg.Global.SourceName,
		cfg.Global.ReportingEntityName,
		cfg.Collector.BaseURL,
		cfg.Collector.ListenerPath,
		cfg.Heartbeat.Interval.Duration,
		cfg.Measurement.Enabled,
	)
	return nil
}

// reloadOnHangup turns SIGHUP into coalesced config reload requests until ctx ends.
// Params: ctx process lifecycle.
// Returns: reload trigger channel for app.Runtime.
func reloadOnHangup(ctx context.Context) <-chan struct{} {
	hangup := make(chan os.Signal, 1)
	signal.Notify(hangup, syscall.SIGHUP)

	reload := make(chan struct{}, 1)
	go func() {
		defer signal.Stop(hangup)
		for {
			select {
			case <-ctx.Done():
				return
			case <-hangup:
				select {
				case reload <- struct{}{}:
				default:
				}
			}
		}
	}()
	return reload
}

func main() {
	os.Exit(run())
}
