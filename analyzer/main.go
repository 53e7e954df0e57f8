package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/yaron8/netperf-analyzer/analyzer/bootstrap"
)

func main() {
	settings := flag.String("settings", "", "path to YAML settings file")
	format := flag.String("format", "", "output format: text or json")
	store := flag.Bool("store", false, "store summaries in Redis")
	serve := flag.Bool("serve", false, "serve stored summaries over HTTP after the report")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(),
			"Usage: %s [flags] measure.cfg results.csv sampleRate\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 3 {
		flag.Usage()
		os.Exit(1)
	}

	sampleRate, err := strconv.Atoi(flag.Arg(2))
	if err != nil || sampleRate <= 0 {
		fmt.Fprintf(os.Stderr, "sampleRate must be a positive number of microseconds, got %q\n", flag.Arg(2))
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	bootstrap, err := bootstrap.NewBootstrap(bootstrap.Options{
		SettingsPath: *settings,
		Format:       *format,
		Store:        *store,
		Serve:        *serve,
		MeasurePath:  flag.Arg(0),
		ResultsPath:  flag.Arg(1),
		SampleRate:   sampleRate,
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to create analyzer bootstrap: %v", err))
	}

	if err := bootstrap.Start(ctx); err != nil {
		panic(fmt.Sprintf("Failed to run analyzer: %v", err))
	}
}
