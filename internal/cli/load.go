package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/wdgraph/internal/graph"
	"github.com/ppiankov/wdgraph/internal/input"
	"github.com/ppiankov/wdgraph/internal/lookup"
	"github.com/ppiankov/wdgraph/internal/model"
	"github.com/ppiankov/wdgraph/internal/pipeline"
	"github.com/ppiankov/wdgraph/internal/worker"
)

// loadCmd represents the load command
var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load entity dumps into the graph store",
	Long: `Load transforms Wikidata entity dumps into graph nodes:
- Property dumps are loaded first, then item dumps
- Each entity becomes one node keyed by its encoded identifier
- Existing nodes get their properties replaced, new ones are created
- Property records can be exported as a name lookup file for later runs

Example:
  wdgraph load --properties 'dumps/properties*.json.gz' --export property-names.json
  wdgraph load --items 'dumps/items-*.json.zst' --names property-names.json --store graph.db
  wdgraph load --items latest-all.json.bz2 --names property-names.json --workers 8`,
	Args: cobra.NoArgs,
	RunE: runLoad,
}

func init() {
	rootCmd.AddCommand(loadCmd)
	defaults := model.DefaultConfig()
	flags := loadCmd.Flags()

	// Input flags
	flags.StringSlice("items", nil, "item dump files or glob patterns (repeatable)")
	flags.StringSlice("properties", nil, "property dump files or glob patterns (repeatable)")
	flags.String("names", "", "property-name lookup file (claims are skipped without it)")
	flags.String("export", "", "write property records to this lookup file")
	flags.String("language", defaults.Language, "designated language for labels, descriptions, aliases and monolingual text")

	// Store flags
	flags.String("store", defaults.Store.Path, "graph store path")
	flags.String("driver", defaults.Store.Driver, "graph store driver (sqlite, memory)")
	flags.Int("batch-size", defaults.Store.BatchSize, "store writes per transaction")

	// Concurrency flags
	flags.Int("workers", defaults.Concurrency.ParseWorkers, "parse workers (store writes stay on one goroutine)")

	// Logging flags
	flags.String("log-level", defaults.Log.Level, "log level (debug, info, warn, error)")
	flags.String("log-format", defaults.Log.Format, "log format (text, json)")
	flags.Duration("progress", defaults.Progress.Interval, "interval between progress lines (0 disables)")
	flags.String("metrics-file", "", "write pass metrics to this Prometheus textfile")

	bindFlags(loadCmd, map[string]string{
		"items":        "input.items",
		"properties":   "input.properties",
		"names":        "input.property_names",
		"export":       "export.property_dump",
		"language":     "language",
		"store":        "store.path",
		"driver":       "store.driver",
		"batch-size":   "store.batch_size",
		"workers":      "concurrency.parse_workers",
		"log-level":    "log.level",
		"log-format":   "log.format",
		"progress":     "progress.interval",
		"metrics-file": "metrics.textfile",
	})
}

func bindFlags(cmd *cobra.Command, keys map[string]string) {
	for flag, key := range keys {
		_ = viper.BindPFlag(key, cmd.Flags().Lookup(flag))
	}
}

func runLoad(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := newLogger(cfg.Log, os.Stderr)
	if err != nil {
		return err
	}
	logger = logger.With(slog.String("run_id", uuid.NewString()))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return load(ctx, cfg, logger)
}

// load runs one pass. Store and exporter are closed exactly once, also on failure.
func load(ctx context.Context, cfg *model.Config, logger *slog.Logger) (err error) {
	propertyFiles, err := input.Expand(cfg.Input.Properties)
	if err != nil {
		return fmt.Errorf("property dumps: %w", err)
	}
	itemFiles, err := input.Expand(cfg.Input.Items)
	if err != nil {
		return fmt.Errorf("item dumps: %w", err)
	}

	names, err := lookup.Load(cfg.Input.PropertyNames, logger)
	if err != nil {
		return err
	}
	if names == nil && len(itemFiles) > 0 {
		logger.Warn("No property-name lookup file; item claims will be skipped")
	}

	if verbose {
		printBanner(os.Stderr, cfg, propertyFiles, itemFiles)
	}

	store, err := graph.Open(ctx, graph.Options{
		Driver:    cfg.Store.Driver,
		Path:      cfg.Store.Path,
		BatchSize: cfg.Store.BatchSize,
	})
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close store: %w", closeErr))
		}
	}()

	var exporter *pipeline.PropertyExporter
	if cfg.Export.PropertyDump != "" {
		exporter, err = pipeline.NewPropertyExporter(cfg.Export.PropertyDump)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := exporter.Close(); closeErr != nil {
				err = errors.Join(err, closeErr)
			}
		}()
	}

	loader := pipeline.NewLoader(pipeline.Options{
		Store:            store,
		Builder:          pipeline.NewBuilder(cfg.Language, names),
		Exporter:         exporter,
		Limiter:          worker.NewLimiter(cfg.Log.DiagnosticsPerSecond, cfg.Log.DiagnosticsBurst),
		Logger:           logger,
		ParseWorkers:     cfg.Concurrency.ParseWorkers,
		QueueSize:        cfg.Concurrency.QueueSize,
		ProgressInterval: cfg.Progress.Interval,
	})

	runErr := loader.Run(ctx, propertyFiles, itemFiles)
	loader.LogSummary()

	if reader, ok := store.(graph.Reader); ok && runErr == nil {
		if n, cErr := reader.CountNodes(ctx); cErr == nil {
			logger.Info("Store contents", slog.String("path", cfg.Store.Path), slog.String("nodes", humanize.Comma(n)))
		}
	}

	if cfg.Metrics.Textfile != "" {
		if mErr := loader.Metrics().WriteTextfile(cfg.Metrics.Textfile); mErr != nil {
			logger.Warn("Failed to write metrics", slog.String("path", cfg.Metrics.Textfile), slog.String("error", mErr.Error()))
		}
	}

	if verbose {
		printSummary(os.Stderr, loader.Stats())
	}

	return runErr
}

// newLogger builds the slog logger selected by the log configuration
func newLogger(cfg model.LogConfig, w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(cfg.Format) {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format: %s", cfg.Format)
	}
}

func printBanner(w io.Writer, cfg *model.Config, propertyFiles, itemFiles []string) {
	fmt.Fprintln(w, "═══════════════════════════════════════════════════════════")
	fmt.Fprintf(w, "  wdgraph load (%s)\n", version)
	fmt.Fprintln(w, "═══════════════════════════════════════════════════════════")
	fmt.Fprintf(w, "Store:           %s (%s)\n", cfg.Store.Path, cfg.Store.Driver)
	fmt.Fprintf(w, "Language:        %s\n", cfg.Language)
	fmt.Fprintf(w, "Property dumps:  %d\n", len(propertyFiles))
	fmt.Fprintf(w, "Item dumps:      %d\n", len(itemFiles))
	if cfg.Input.PropertyNames != "" {
		fmt.Fprintf(w, "Property names:  %s\n", cfg.Input.PropertyNames)
	}
	if cfg.Export.PropertyDump != "" {
		fmt.Fprintf(w, "Export:          %s\n", cfg.Export.PropertyDump)
	}
	fmt.Fprintf(w, "Parse workers:   %d\n", cfg.Concurrency.ParseWorkers)
	fmt.Fprintln(w)
}

func printSummary(w io.Writer, s pipeline.Stats) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "═══════════════════════════════════════════════════════════")
	fmt.Fprintln(w, "  Load Summary")
	fmt.Fprintln(w, "═══════════════════════════════════════════════════════════")
	fmt.Fprintf(w, "Documents:       %s\n", humanize.Comma(s.Documents))
	fmt.Fprintf(w, "✓ Created:       %s\n", humanize.Comma(s.Created))
	fmt.Fprintf(w, "✓ Updated:       %s\n", humanize.Comma(s.Updated))
	fmt.Fprintf(w, "✗ Skipped:       %s\n", humanize.Comma(s.Skipped))
	if s.Exported > 0 {
		fmt.Fprintf(w, "Exported:        %s\n", humanize.Comma(s.Exported))
	}
	var diags int64
	for _, n := range s.Diagnostics {
		diags += n
	}
	fmt.Fprintf(w, "Diagnostics:     %s\n", humanize.Comma(diags))
	fmt.Fprintf(w, "Duration:        %v\n", s.Duration.Round(time.Millisecond))
	fmt.Fprintln(w)
}
