// Package pipeline loads entity dumps into a graph store
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/time/rate"

	"github.com/ppiankov/wdgraph/internal/cache"
	"github.com/ppiankov/wdgraph/internal/extract"
	"github.com/ppiankov/wdgraph/internal/graph"
	"github.com/ppiankov/wdgraph/internal/input"
	"github.com/ppiankov/wdgraph/internal/model"
	"github.com/ppiankov/wdgraph/internal/worker"
)

// Options configures a Loader
type Options struct {
	Store    graph.Store
	Builder  *Builder
	Exporter *PropertyExporter // Optional; receives property records only
	Metrics  *Metrics          // Optional
	Limiter  *worker.Limiter   // Optional; caps diagnostic lines per kind
	Logger   *slog.Logger      // Optional

	ParseWorkers     int
	QueueSize        int
	ProgressInterval time.Duration // 0 disables progress lines
}

// Stats summarises a pass
type Stats struct {
	Documents   int64
	Created     int64
	Updated     int64
	Skipped     int64
	Exported    int64
	Diagnostics map[extract.DiagnosticKind]int64
	Duration    time.Duration
}

// Loader runs documents through the builder and writes them to the store.
// Parsing may run on several goroutines; store and exporter writes happen on one, in input order.
type Loader struct {
	store    graph.Store
	builder  *Builder
	exporter *PropertyExporter
	metrics  *Metrics
	limiter  *worker.Limiter
	logger   *slog.Logger
	unknown  *cache.Once
	progress *rate.Sometimes

	workers int
	queue   int
	stats   Stats
}

type dumpLine struct {
	no   int
	data []byte
}

type built struct {
	lineNo int
	rec    *model.Record
	diags  []extract.Diagnostic
}

// NewLoader creates a loader
func NewLoader(opts Options) *Loader {
	l := &Loader{
		store:    opts.Store,
		builder:  opts.Builder,
		exporter: opts.Exporter,
		metrics:  opts.Metrics,
		limiter:  opts.Limiter,
		logger:   opts.Logger,
		unknown:  cache.NewOnce(),
		workers:  opts.ParseWorkers,
		queue:    opts.QueueSize,
		stats:    Stats{Diagnostics: make(map[extract.DiagnosticKind]int64)},
	}
	if l.metrics == nil {
		l.metrics = NewMetrics()
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	if opts.ProgressInterval > 0 {
		l.progress = &rate.Sometimes{Interval: opts.ProgressInterval}
	}
	return l
}

// Run loads all property dumps, then all item dumps.
// Any store or file error ends the pass.
func (l *Loader) Run(ctx context.Context, propertyFiles, itemFiles []string) error {
	start := time.Now()
	defer func() {
		l.stats.Duration = time.Since(start)
		l.metrics.SetDuration(l.stats.Duration.Seconds())
	}()

	for _, path := range propertyFiles {
		if err := l.LoadFile(ctx, path, model.KindProperty); err != nil {
			return err
		}
	}
	for _, path := range itemFiles {
		if err := l.LoadFile(ctx, path, model.KindItem); err != nil {
			return err
		}
	}
	return nil
}

// LoadFile loads one dump file of the given kind
func (l *Loader) LoadFile(ctx context.Context, path string, kind model.Kind) error {
	r, err := input.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = r.Close() }()

	before := l.stats.Documents
	l.logger.Info("Loading dump", slog.String("path", path), slog.String("kind", kind.String()))

	if err := l.Load(ctx, r, path, kind); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}

	l.logger.Info("Finished dump",
		slog.String("path", path),
		slog.String("documents", humanize.Comma(l.stats.Documents-before)))
	return nil
}

// Load loads documents of the given kind from r. source names r in log lines.
func (l *Loader) Load(ctx context.Context, r io.Reader, source string, kind model.Kind) error {
	pool := worker.NewPool(l.workers, l.queue, func(in dumpLine) built {
		rec, diags := l.builder.Build(in.data, kind)
		return built{lineNo: in.no, rec: rec, diags: diags}
	})
	l.logger.Debug("Parse stage", slog.String("source", source), slog.Int("workers", pool.Workers()))

	return pool.Run(ctx,
		func(ctx context.Context, emit func(dumpLine) error) error {
			return input.DumpLines(r, func(lineNo int, line []byte) error {
				return emit(dumpLine{no: lineNo, data: line})
			})
		},
		func(b built) error {
			return l.write(ctx, source, kind, b)
		})
}

// write is the single writer: diagnostics, store, exporter, progress
func (l *Loader) write(ctx context.Context, source string, kind model.Kind, b built) error {
	l.stats.Documents++
	for _, d := range b.diags {
		l.report(source, b.lineNo, d)
	}

	if b.rec == nil {
		l.stats.Skipped++
		l.metrics.Document(kind, OutcomeSkipped)
		return nil
	}

	created, err := Apply(ctx, l.store, b.rec)
	if err != nil {
		return err
	}
	if created {
		l.stats.Created++
		l.metrics.Document(kind, OutcomeCreated)
	} else {
		l.stats.Updated++
		l.metrics.Document(kind, OutcomeUpdated)
	}

	if kind == model.KindProperty && l.exporter != nil {
		if err := l.exporter.Export(b.rec); err != nil {
			return err
		}
		l.stats.Exported++
		l.metrics.Exported()
	}

	if l.progress != nil {
		l.progress.Do(func() {
			l.logger.Info("Progress",
				slog.String("source", source),
				slog.String("documents", humanize.Comma(l.stats.Documents)),
				slog.String("created", humanize.Comma(l.stats.Created)),
				slog.String("updated", humanize.Comma(l.stats.Updated)),
				slog.String("skipped", humanize.Comma(l.stats.Skipped)))
		})
	}
	return nil
}

// report logs one diagnostic. Unknown properties are logged once per property at WARN.
func (l *Loader) report(source string, lineNo int, d extract.Diagnostic) {
	l.stats.Diagnostics[d.Kind]++
	l.metrics.Diagnostic(d.Kind)

	level := slog.LevelWarn
	if d.Kind == extract.DiagUnknownProperty && !l.unknown.First(cache.Key(string(d.Kind), d.PropertyID)) {
		level = slog.LevelDebug
	}
	if level == slog.LevelWarn && !l.limiter.Allow(string(d.Kind)) {
		return
	}

	attrs := []slog.Attr{
		slog.String("diagnostic", string(d.Kind)),
		slog.String("source", source),
		slog.Int("line", lineNo),
	}
	if d.EntityID != "" {
		attrs = append(attrs, slog.String("entity", d.EntityID))
	}
	if d.PropertyID != "" {
		attrs = append(attrs, slog.String("property", d.PropertyID))
	}
	if d.Datatype != "" {
		attrs = append(attrs, slog.String("datatype", d.Datatype))
	}
	if d.Err != nil {
		attrs = append(attrs, slog.String("error", d.Err.Error()))
	}
	l.logger.LogAttrs(context.Background(), level, "Skipped data", attrs...)
}

// Stats returns a copy of the pass counters
func (l *Loader) Stats() Stats {
	s := l.stats
	s.Diagnostics = maps.Clone(l.stats.Diagnostics)
	return s
}

// Metrics returns the metrics the loader updates
func (l *Loader) Metrics() *Metrics {
	return l.metrics
}

// Suppressed returns diagnostic lines dropped by the limiter, per kind
func (l *Loader) Suppressed() map[string]int64 {
	return l.limiter.Suppressed()
}

// UnknownProperties returns how many distinct unresolvable properties were seen
func (l *Loader) UnknownProperties() int {
	return l.unknown.Seen()
}

// LogSummary logs the pass counters
func (l *Loader) LogSummary() {
	s := l.Stats()
	attrs := []any{
		slog.String("documents", humanize.Comma(s.Documents)),
		slog.String("created", humanize.Comma(s.Created)),
		slog.String("updated", humanize.Comma(s.Updated)),
		slog.String("skipped", humanize.Comma(s.Skipped)),
		slog.String("exported", humanize.Comma(s.Exported)),
		slog.Int("unknown_properties", l.UnknownProperties()),
		slog.Duration("duration", s.Duration.Round(time.Millisecond)),
	}
	for _, kind := range slices.Sorted(maps.Keys(s.Diagnostics)) {
		attrs = append(attrs, slog.Int64(string(kind), s.Diagnostics[kind]))
	}
	l.logger.Info("Pass complete", attrs...)

	if l.exporter != nil {
		l.logger.Info("Property dump written",
			slog.String("path", l.exporter.Path()),
			slog.String("properties", humanize.Comma(l.exporter.Count())))
	}

	for kind, n := range l.Suppressed() {
		l.logger.Info("Diagnostic lines suppressed", slog.String("diagnostic", kind), slog.Int64("count", n))
	}
}
