// Command converter turns glucose-meter CSV exports into color-coded
// XLSX reports. It is thin presentation glue: flags become a pipeline
// request, and the pipeline's result or error is rendered to the
// terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"github.com/joho/godotenv"

	"glucli/internal/config"
	"glucli/internal/files"
	"glucli/internal/infrastructure"
	"glucli/internal/pipeline"
	"glucli/internal/templates"
	"glucli/internal/tracker"
)

// sourcePattern matches the meter's download file names.
const sourcePattern = "ContourCSVReport*.csv"

// dateFlagLayout is the layout for -start-date and -end-date values.
const dateFlagLayout = "02.01.2006"

func main() {
	os.Exit(run())
}

func run() int {
	output := flag.String("o", "", "output XLSX file path (default: derived from input)")
	configPath := flag.String("config", "", "path to configuration file")
	autoDetect := flag.Bool("auto-detect", false, "pick the newest meter CSV from the downloads folder")

	templateName := flag.String("template", "", "template name to use")
	listTemplates := flag.Bool("list-templates", false, "list available templates and exit")
	saveTemplate := flag.String("save-template", "", "save the given XLSX file as a template (requires -as)")
	saveAs := flag.String("as", "", "name for -save-template")

	incremental := flag.Bool("incremental", false, "only export data since the last export")
	startDate := flag.String("start-date", "", "start date (DD.MM.YYYY)")
	endDate := flag.String("end-date", "", "end date (DD.MM.YYYY)")
	lastDays := flag.Int("last-days", 0, "export the last N days only")

	resetTracker := flag.Bool("reset-tracker", false, "reset the export tracker for the input file")
	showTracker := flag.Bool("show-tracker", false, "show export tracking history and exit")

	// A .env next to the binary can seed GLUCOSE_* overrides.
	_ = godotenv.Load()
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		return 1
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}

	store, err := templates.NewStore(cfg.Storage.TemplateDir, logger)
	if err != nil {
		logger.Error("failed to open template store", "error", err)
		return 1
	}
	trk := tracker.New(cfg.Storage.TrackerFile, logger)

	switch {
	case *listTemplates:
		return printTemplates(store)
	case *saveTemplate != "":
		if *saveAs == "" {
			fmt.Fprintln(os.Stderr, "Error: -save-template requires -as NAME")
			return 1
		}
		path, err := store.Save(*saveTemplate, *saveAs)
		if err != nil {
			logger.Error("failed to save template", "error", err)
			return 1
		}
		fmt.Printf("Template saved: %s\n  Location: %s\n", *saveAs, path)
		return 0
	case *showTracker:
		return printTracker(trk)
	}

	// Reset names its file explicitly; it never falls back to
	// downloads discovery.
	if *resetTracker {
		return runReset(trk, flag.Arg(0))
	}

	input := flag.Arg(0)
	if *autoDetect || input == "" {
		fmt.Printf("Looking for the latest meter CSV in %s...\n", cfg.Storage.DownloadsDir)
		latest, ok, err := files.LatestMatching(cfg.Storage.DownloadsDir, sourcePattern)
		if err != nil || !ok {
			fmt.Fprintln(os.Stderr, "Error: no meter CSV files found in the downloads folder")
			return 1
		}
		input = latest.Path
		fmt.Printf("Found: %s\n", input)
	}

	req := pipeline.Request{
		SourcePath:   input,
		OutputPath:   *output,
		TemplateName: *templateName,
	}

	if req.StartDate, err = parseDateFlag(*startDate); err != nil {
		fmt.Fprintln(os.Stderr, "Error: invalid start date, use DD.MM.YYYY")
		return 1
	}
	if req.EndDate, err = parseDateFlag(*endDate); err != nil {
		fmt.Fprintln(os.Stderr, "Error: invalid end date, use DD.MM.YYYY")
		return 1
	}
	if *lastDays > 0 {
		end := time.Now()
		start := end.AddDate(0, 0, -*lastDays)
		req.StartDate, req.EndDate = &start, &end
	}
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "incremental" {
			req.Incremental = incremental
		}
	})

	conv := pipeline.New(cfg, trk, store, logger, pipeline.WithOpener(openFile))
	result, err := conv.Convert(context.Background(), req)
	if err != nil {
		logger.Error("conversion failed", "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	for _, w := range result.Warnings {
		fmt.Printf("Warning: %s\n", w)
	}
	if result.NoData {
		fmt.Println("No data found in the specified date range")
		return 0
	}

	fmt.Printf("Conversion complete: %d readings\nOutput saved to: %s\n", result.Readings, result.OutputPath)
	return 0
}

// runReset clears the export tracker entry for the named input file.
func runReset(trk *tracker.Tracker, input string) int {
	if input == "" {
		fmt.Fprintln(os.Stderr, "Error: -reset-tracker requires an input file")
		return 1
	}
	abs, err := filepath.Abs(input)
	if err != nil {
		abs = input
	}
	if err := trk.Reset(abs); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to reset export tracker: %v\n", err)
		return 1
	}
	fmt.Printf("Reset export tracker for: %s\n", filepath.Base(input))
	return 0
}

func printTemplates(store *templates.Store) int {
	names, err := store.List()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if len(names) == 0 {
		fmt.Println("No templates found")
		return 0
	}
	fmt.Println("Available templates:")
	for _, name := range names {
		fmt.Printf("  - %s\n", name)
	}
	return 0
}

func printTracker(trk *tracker.Tracker) int {
	entries := trk.Entries()
	if len(entries) == 0 {
		fmt.Println("No export history found")
		return 0
	}
	fmt.Println("Export tracking history:")
	for source, rec := range entries {
		fmt.Printf("  %s:\n    Last export: %s\n    Updated: %s\n",
			filepath.Base(source), rec.LastExport, rec.UpdatedAt)
	}
	return 0
}

func parseDateFlag(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateFlagLayout, value, time.Local)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// openFile reveals the produced report with the platform's opener.
func openFile(path string) error {
	switch runtime.GOOS {
	case "windows":
		return exec.Command("cmd", "/c", "start", "", path).Start()
	case "darwin":
		return exec.Command("open", path).Start()
	default:
		return exec.Command("xdg-open", path).Start()
	}
}
