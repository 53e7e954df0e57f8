package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/yaron8/netperf-analyzer/collector/bootstrap"
	"github.com/yaron8/netperf-analyzer/collector/config"
	"github.com/yaron8/netperf-analyzer/collector/metrics"
)

func main() {
	settings := flag.String("settings", "", "path to YAML settings file")
	interfaces := flag.String("interfaces", "", "comma separated interfaces to record (default all)")
	duration := flag.Duration("duration", 0, "how long to record (default until interrupted)")
	out := flag.String("out", "", "results CSV path")
	port := flag.Int("port", -1, "serve the live CSV on this port (0 disables)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] sampleRate\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}

	sampleRate, err := strconv.Atoi(flag.Arg(0))
	if err != nil || sampleRate <= 0 {
		fmt.Fprintf(os.Stderr, "sampleRate must be a positive number of microseconds, got %q\n", flag.Arg(0))
		os.Exit(1)
	}

	cfg := config.NewConfig()
	if *settings != "" {
		if cfg, err = config.Load(*settings); err != nil {
			panic(fmt.Sprintf("Failed to load collector settings: %v", err))
		}
	}
	if *interfaces != "" {
		cfg.Interfaces = strings.Split(*interfaces, ",")
	}
	if *duration > 0 {
		cfg.Duration = *duration
	}
	if *out != "" {
		cfg.Output = *out
	}
	if *port >= 0 {
		cfg.Port = *port
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	bootstrap, err := bootstrap.NewBootstrap(cfg, sampleRate, metrics.PSUtilSource{})
	if err != nil {
		panic(fmt.Sprintf("Failed to create collector bootstrap: %v", err))
	}

	if err := bootstrap.Start(ctx); err != nil {
		panic(fmt.Sprintf("Failed to run collector: %v", err))
	}
}
