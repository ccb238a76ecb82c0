package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"glucli/internal/config"
	"glucli/internal/dataprocessing"
	"glucli/internal/exporter"
	"glucli/internal/templates"
	"glucli/internal/tracker"
	"glucli/pkg/contracts/domain"
)

// Request drives one conversion run.
type Request struct {
	SourcePath string
	// OutputPath overrides the derived output location when set.
	OutputPath string
	// TemplateName overrides the configured default template.
	TemplateName string
	StartDate    *time.Time
	EndDate      *time.Time
	// Incremental overrides the configured incremental setting when
	// non-nil.
	Incremental *bool
}

// Result is the outcome of a successful run. NoData marks the
// distinguished empty-result outcome: nothing matched the window and
// no file was produced.
type Result struct {
	OutputPath string
	Readings   int
	NoData     bool
	Warnings   []Warning
}

// OpenFunc reveals or opens a produced file. The cmd layer supplies a
// platform-specific implementation; the core only invokes it.
type OpenFunc func(path string) error

// Option configures a Converter.
type Option func(*Converter)

// WithOpener installs the on-success open callback.
func WithOpener(open OpenFunc) Option {
	return func(c *Converter) { c.opener = open }
}

// WithClock overrides the time source used for date-filter windows and
// derived output names.
func WithClock(now func() time.Time) Option {
	return func(c *Converter) { c.now = now }
}

// Converter orchestrates one conversion run at a time:
// read, filter, sort, classify, build, then update the export tracker.
// Concurrent runs over the same source file are not coordinated here;
// callers serialize per source file.
type Converter struct {
	cfg       *config.Config
	tracker   *tracker.Tracker
	templates *templates.Store
	builder   *exporter.Builder
	logger    *slog.Logger
	opener    OpenFunc
	now       func() time.Time
}

// New creates a converter over the given collaborators.
func New(cfg *config.Config, trk *tracker.Tracker, store *templates.Store, logger *slog.Logger, opts ...Option) *Converter {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Converter{
		cfg:       cfg,
		tracker:   trk,
		templates: store,
		builder:   exporter.NewBuilder(cfg.GlucoseThresholds(), cfg.Output.DateFormat, logger),
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Convert runs the pipeline for one request. Fatal failures return a
// *ConversionError; recoverable issues accumulate as warnings on the
// result. An empty filtered set is not a failure: the result carries
// NoData and no file is produced.
func (c *Converter) Convert(ctx context.Context, req Request) (*Result, error) {
	state := NewRunState(c.logger)
	result := &Result{}

	source, err := filepath.Abs(req.SourcePath)
	if err != nil {
		source = req.SourcePath
	}
	if _, err := os.Stat(source); err != nil {
		cerr := NewSourceNotFoundError(source, err)
		state.Fail(cerr)
		return nil, cerr
	}

	c.logger.InfoContext(ctx, "conversion started",
		slog.String("run_id", state.ID),
		slog.String("source", source))

	incremental := c.cfg.Export.Incremental
	if req.Incremental != nil {
		incremental = *req.Incremental
	}

	startDate, endDate := req.StartDate, req.EndDate
	if incremental && startDate == nil {
		// Non-strict lower bound: a reading at exactly the recorded
		// instant is exported again on the next run.
		if last, ok := c.tracker.LastExportDate(source); ok {
			startDate = &last
			c.logger.InfoContext(ctx, "incremental export window resolved",
				slog.String("run_id", state.ID),
				slog.Time("start", last))
		}
	}
	if c.cfg.Export.DateFilterEnabled && endDate == nil {
		end := c.now()
		endDate = &end
		if startDate == nil {
			start := end.AddDate(0, 0, -c.cfg.Export.DateFilterDays)
			startDate = &start
		}
	}

	state.Transition(StateReading)
	parsed, err := dataprocessing.ReadFile(source, c.logger)
	if err != nil {
		cerr := NewSourceReadError(source, err)
		state.Fail(cerr)
		return nil, cerr
	}
	for _, w := range parsed.Warnings {
		result.Warnings = append(result.Warnings, Warning{Kind: KindRowParse, Message: w.String()})
	}

	state.Transition(StateFiltering)
	readings := filterByWindow(parsed.Readings, startDate, endDate)

	state.Transition(StateSorting)
	sort.SliceStable(readings, func(i, j int) bool {
		return readings[i].Timestamp.Before(readings[j].Timestamp)
	})

	if len(readings) == 0 {
		state.Complete()
		result.NoData = true
		c.logger.InfoContext(ctx, "no data in range",
			slog.String("run_id", state.ID),
			slog.String("source", source))
		return result, nil
	}

	header := c.resolveTemplate(ctx, req.TemplateName, result)

	outputPath, cerr := c.resolveOutputPath(req.OutputPath, source)
	if cerr != nil {
		state.Fail(cerr)
		return nil, cerr
	}

	state.Transition(StateBuilding)
	if err := c.builder.Build(readings, header, outputPath); err != nil {
		cerr := NewOutputWriteError(outputPath, err)
		state.Fail(cerr)
		return nil, cerr
	}

	state.Transition(StateTrackerUpdate)
	if incremental {
		latest := readings[len(readings)-1].Timestamp
		if err := c.tracker.RecordExport(source, latest); err != nil {
			result.Warnings = append(result.Warnings, Warning{
				Kind:    KindTrackerIO,
				Message: fmt.Sprintf("report produced but export tracker update failed: %v", err),
			})
		}
	}

	if c.cfg.Output.AutoOpen && c.opener != nil {
		if err := c.opener(outputPath); err != nil {
			c.logger.WarnContext(ctx, "could not auto-open report",
				slog.String("path", outputPath),
				slog.String("error", err.Error()))
		}
	}

	state.Complete()
	result.OutputPath = outputPath
	result.Readings = len(readings)

	c.logger.InfoContext(ctx, "conversion finished",
		slog.String("run_id", state.ID),
		slog.String("output", outputPath),
		slog.Int("readings", len(readings)),
		slog.Int("warnings", len(result.Warnings)),
		slog.Duration("duration", state.Duration()))

	return result, nil
}

// resolveTemplate picks the requested template, falling back to the
// configured default and then to built-in formatting. A missing or
// unreadable template downgrades to a warning, never a failure.
func (c *Converter) resolveTemplate(ctx context.Context, name string, result *Result) *templates.StyledHeader {
	if name == "" {
		name = c.cfg.Export.DefaultTemplate
	}
	if name == "" {
		return nil
	}

	header, err := c.templates.Load(name)
	if err != nil {
		result.Warnings = append(result.Warnings, Warning{
			Kind:    KindTemplateLoad,
			Message: fmt.Sprintf("template %q unreadable, using default formatting: %v", name, err),
		})
		return nil
	}
	if header == nil {
		result.Warnings = append(result.Warnings, Warning{
			Kind:    KindTemplateLoad,
			Message: fmt.Sprintf("template %q not found, using default formatting", name),
		})
		return nil
	}

	c.logger.InfoContext(ctx, "using template", slog.String("template", name))
	return header
}

// resolveOutputPath derives the output location when the request does
// not name one: the configured output folder (or the source's folder)
// plus a timestamped file name.
func (c *Converter) resolveOutputPath(requested, source string) (string, *ConversionError) {
	if requested != "" {
		if dir := filepath.Dir(requested); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return "", NewOutputWriteError(requested, err)
			}
		}
		return requested, nil
	}

	dir := c.cfg.Output.Folder
	if dir == "" {
		dir = filepath.Dir(source)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", NewOutputWriteError(dir, err)
	}

	stem := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	name := fmt.Sprintf("%s_formatted_%s.xlsx", stem, c.now().Format("20060102_150405"))
	return filepath.Join(dir, name), nil
}

// filterByWindow drops readings outside the closed [start, end]
// interval; nil bounds are open.
func filterByWindow(readings []domain.Reading, start, end *time.Time) []domain.Reading {
	if start == nil && end == nil {
		return readings
	}
	var kept []domain.Reading
	for _, r := range readings {
		if start != nil && r.Timestamp.Before(*start) {
			continue
		}
		if end != nil && r.Timestamp.After(*end) {
			continue
		}
		kept = append(kept, r)
	}
	return kept
}
