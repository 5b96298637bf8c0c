package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/erp/retail/internal/infrastructure/config"
	"github.com/erp/retail/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func main() {
	os.Exit(realMain())
}

// realMain runs the CLI and returns the process exit code, so deferred cleanup
// such as flushing the logger runs before the process exits.
func realMain() int {
	// Parse flags
	var (
		configDir string
		logLevel  string
	)

	flag.StringVar(&configDir, "config-dir", "", "Directory holding config.toml (default: ., ./config)")
	flag.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides config")
	flag.Usage = func() { printUsage(os.Stderr) }
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage(os.Stderr)
		return 2
	}

	// Load configuration
	cfg, err := config.LoadFrom(configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The context carries the run id and command; logger.L(ctx) adds them to every entry
	ctx, _ = logger.WithRequestID(ctx, log, uuid.NewString())
	ctx, _ = logger.WithCommand(ctx, log, args[0])

	if err := run(ctx, cfg, log, args, os.Stdout); err != nil {
		logger.L(ctx).Error("Command failed", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, errUsage) {
			return 2
		}
		return 1
	}
	return 0
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `Usage: shop [flags] <command> [args]

Commands:
  clients                                  List clients
  orders                                   List orders
  catalog                                  List catalog products
  add-client -fio F [-phone P] [-email E]  Register a client
  sell -client N -products "A, 10; B, 20"  Record a per-unit sale
  weigh -client N -item name=kg ...        Record a sale by weight
  report [-top N] [-from D] [-to D]        Print the sales analysis
  import-catalog FILE.csv                  Add products from a name,price,is_per_kg CSV
  seed [-clients N] [-orders M] [-seed S]  Generate demo clients and orders

Flags:
`)
	flag.CommandLine.SetOutput(w)
	flag.PrintDefaults()
}
