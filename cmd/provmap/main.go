// Command provmap segments a painted province map.
//
// Usage:
//
//	provmap -in map.bmp -out dir [-stages] [-min-shape-size n] [-compress]
//	        [-metrics file] [-workers n]
//
// Outputs in dir:
//
//	provinces.bmp    every province in its unique colour
//	shapedata.bin    label matrix snapshot
//	provdata.bin     province-ID matrix snapshot
//	definition.csv   one record per province
//	labels1.bmp      pass 1 preview (-stages)
//	labels2.bmp      pass 2 preview (-stages)
//
// Settings may also come from .env or PROVMAP_* variables; flags win.
// SIGINT cancels a running segmentation.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/katalvlaran/provmap/internal/config"
	"github.com/katalvlaran/provmap/internal/logging"
)

// Exit codes.
const (
	exitOK       = 0
	exitFailure  = 1
	exitUsage    = 2
	exitCanceled = 130
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitUsage
	}

	fs := flag.NewFlagSet("provmap", flag.ContinueOnError)
	fs.StringVar(&cfg.Input, "in", cfg.Input, "input bitmap")
	fs.StringVar(&cfg.OutputDir, "out", cfg.OutputDir, "output directory")
	fs.BoolVar(&cfg.StageOutput, "stages", cfg.StageOutput, "write labels1.bmp and labels2.bmp")
	fs.IntVar(&cfg.MinShapeSize, "min-shape-size", cfg.MinShapeSize, "warn about shapes with at most this many pixels")
	fs.BoolVar(&cfg.Compress, "compress", cfg.Compress, "zstd-compress snapshots")
	fs.StringVar(&cfg.MetricsFile, "metrics", cfg.MetricsFile, "Prometheus textfile to write")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "workers for layer rebuilds (0: one per CPU)")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if cfg.Input == "" {
		fmt.Fprintln(os.Stderr, "provmap: -in is required")
		fs.Usage()
		return exitUsage
	}

	log, cleanup, err := logging.Setup(logging.Options{
		Level: cfg.LogLevel,
		JSON:  cfg.LogFormat == "json",
		File:  cfg.LogFile,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitFailure
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := &pipeline{cfg: cfg, log: log}
	switch err := p.run(ctx); {
	case errors.Is(err, errCanceled):
		log.Warn("cancelled")
		return exitCanceled
	case err != nil:
		log.Error("provmap failed", "error", err)
		return exitFailure
	}

	return exitOK
}
