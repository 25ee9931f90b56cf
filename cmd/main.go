package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"spdxify/config"
	"spdxify/logger"
	"spdxify/output"
	"spdxify/scanner"
	"spdxify/version"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes one invocation and returns the process exit code:
// 0 on success, 1 when at least one file failed, 2 on usage errors.
func run(args []string) int {
	// Initialize configuration
	cfg, err := config.LoadConfig(args)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return 2
	}
	if cfg.ShowVersion {
		fmt.Printf("spdxify version %s\n", version.Version)
		return 0
	}

	// Initialize logger
	logger.Init(cfg.LogLevel)

	if cfg.DryRun && !cfg.StripARR && !cfg.StripLicenseText && !cfg.AddSPDX {
		logger.Warn("-dry-run has no effect without a rewrite action.")
	}

	metrics := output.Metrics{
		StartTime: time.Now().Format(time.RFC3339),
	}

	// Prepare output
	writer, err := output.New(cfg, os.Stdout, &metrics)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize output: %v\n", err)
		return 2
	}

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	err = scanner.ScanFiles(ctx, cfg, &metrics, writer)
	if err != nil {
		logger.Errorf("Scanning interrupted: %v", err)
	}

	metrics.EndTime = time.Now().Format(time.RFC3339)
	writer.SetMetrics(metrics)
	if cerr := writer.Close(); cerr != nil {
		logger.Errorf("Failed to write report: %v", cerr)
	}

	logger.Infof("Scanned %d of %d files: %d matched, %d modified, %d failed, %d skipped, %d warnings.",
		metrics.FilesScanned, metrics.FilesSeen, metrics.FilesMatched, metrics.FilesModified,
		metrics.FilesFailed, metrics.FilesSkipped, metrics.Warnings)

	if err != nil || metrics.FilesFailed > 0 {
		return 1
	}
	return 0
}

func handleSignals(cancelFunc context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	handleSignalEvent(cancelFunc, sigChan)
}

func handleSignalEvent(cancelFunc context.CancelFunc, sigChan <-chan os.Signal) {
	sig, ok := <-sigChan
	if !ok {
		return
	}
	logger.Infof("%s received. Finishing the current file and shutting down...", sig)
	cancelFunc()
}
