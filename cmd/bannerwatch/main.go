package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"bannerwatch/banner"
	"bannerwatch/config"
	"bannerwatch/htmlreport"
	"bannerwatch/models"
	"bannerwatch/snapshot"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML configuration file")
	baseURL := flag.String("base-url", "", "Registration service base URL")
	campus := flag.String("campus", "", "Campus code filter")
	termCount := flag.Int("terms", 0, "Number of terms to scrape, newest first")
	pageSize := flag.Int("page-size", 0, "Rows requested per search page")
	maxPages := flag.Int("max-pages", -1, "Maximum search pages per term (0 = no limit)")
	pageDelayMs := flag.Int("page-delay", -1, "Delay between page fetches (milliseconds)")
	courseDelayMs := flag.Int("course-delay", -1, "Delay between course enrichments (milliseconds)")
	authRetries := flag.Int("auth-retries", 0, "Term authorization attempts")
	timeoutSec := flag.Int("timeout", 0, "HTTP timeout (seconds)")
	outputFile := flag.String("output", "", "Snapshot output file path")
	outputFormat := flag.String("format", "", "Output format: csv, json, or dual")
	metricsAddr := flag.String("metrics-addr", "", "Prometheus metrics listen address (e.g. :9090)")
	calendarFile := flag.String("calendar", "", "Write a weekly calendar HTML view to this path")
	classroomFile := flag.String("classrooms", "", "Write a classroom schedule HTML view to this path")
	verbose := flag.Bool("v", false, "Enable verbose logging")

	flag.Parse()

	cfg, err := buildConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration: %v\n", err)
		os.Exit(1)
	}

	// Flags set explicitly on the command line win over file and env.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "base-url":
			cfg.BaseURL = *baseURL
		case "campus":
			cfg.Campus = *campus
		case "terms":
			cfg.TermCount = *termCount
		case "page-size":
			cfg.PageMaxSize = *pageSize
		case "max-pages":
			cfg.MaxPages = *maxPages
		case "page-delay":
			cfg.PageDelay = time.Duration(*pageDelayMs) * time.Millisecond
		case "course-delay":
			cfg.CourseDelay = time.Duration(*courseDelayMs) * time.Millisecond
		case "auth-retries":
			cfg.AuthRetries = *authRetries
		case "timeout":
			cfg.Timeout = time.Duration(*timeoutSec) * time.Second
		case "output":
			cfg.OutputFile = *outputFile
		case "format":
			cfg.OutputFormat = strings.ToLower(*outputFormat)
		case "metrics-addr":
			cfg.MetricsAddr = *metricsAddr
		case "calendar":
			cfg.CalendarFile = *calendarFile
		case "classrooms":
			cfg.ClassroomFile = *classroomFile
		case "v":
			cfg.Verbose = *verbose
		}
	})

	logger, level := newLogger(cfg.Verbose)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level.Level())

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	slog.Info("starting scrape",
		slog.String("base_url", cfg.BaseURL),
		slog.String("campus", cfg.Campus),
		slog.Int("terms", cfg.TermCount),
	)

	client, err := banner.NewClient(cfg)
	if err != nil {
		slog.Error("initialising client", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received, finishing in-flight work")
	}()

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		metricsServer = &http.Server{
			Addr:    cfg.MetricsAddr,
			Handler: promhttp.HandlerFor(client.Metrics.Registry, promhttp.HandlerOpts{}),
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server failed", slog.Any("error", err))
			}
		}()
		slog.Info("metrics server enabled", slog.String("addr", cfg.MetricsAddr))
	}

	client.InitSession(ctx)

	terms, err := client.FetchTerms(ctx, cfg.TermCount)
	if err != nil {
		slog.Error("fetching terms", slog.Any("error", err))
		os.Exit(1)
	}
	if len(terms) == 0 {
		slog.Error("no terms found")
		os.Exit(1)
	}
	if len(terms) > cfg.TermCount {
		terms = terms[:cfg.TermCount]
	}
	for _, term := range terms {
		slog.Info("scraping term", slog.String("code", term.Code), slog.String("description", term.Description))
	}

	startTime := time.Now()
	totalSections := 0
	var lastResult *models.ScrapeResult
	scraped := make([]termSections, 0, len(terms))

	for i, term := range terms {
		result, err := client.ScrapeTerm(ctx, term.Code)
		lastResult = result
		if err != nil {
			slog.Error("term scrape aborted",
				slog.String("term", term.Code),
				slog.Any("error", err),
			)
			continue
		}

		scraped = append(scraped, termSections{term: term, sections: result.Sections})
		totalSections += len(result.Sections)
		slog.Info("term complete",
			slog.String("term", term.Code),
			slog.Int("sections", len(result.Sections)),
		)

		if i < len(terms)-1 {
			client.ResetForm(ctx)
		}
		if ctx.Err() != nil {
			break
		}
	}

	if err := publishSnapshot(cfg, scraped); err != nil {
		slog.Error("publishing snapshot", slog.Any("error", err))
		os.Exit(1)
	}
	if totalSections > 0 {
		writeHTMLViews(cfg)
	}

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("metrics server shutdown failed", slog.Any("error", err))
		}
		cancel()
	}

	printSummary(lastResult, totalSections, time.Since(startTime), cfg.OutputFile)
}

func buildConfig(path string) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if path != "" {
		cfg, err = config.Load(path)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = config.DefaultConfig()
	}

	if value, ok := config.EnvString("BANNERWATCH_OUTPUT"); ok {
		cfg.OutputFile = value
	}
	if value, ok := config.EnvString("BANNERWATCH_METRICS_ADDR"); ok {
		cfg.MetricsAddr = value
	}
	if value, ok, err := config.EnvInt("BANNERWATCH_TERMS"); err != nil {
		return nil, err
	} else if ok {
		cfg.TermCount = value
	}
	return cfg, nil
}

// termSections pairs a scraped term with its normalized records, held
// in memory until the run has finished.
type termSections struct {
	term     models.Term
	sections []*models.CourseSection
}

// publishSnapshot replaces the snapshot file with the scraped records:
// the previous file is renamed to its _OLD backup, the new snapshot
// written, and the two compared. A run that produced no sections leaves
// the existing snapshot and its backup untouched.
func publishSnapshot(cfg *config.Config, scraped []termSections) error {
	total := 0
	for _, ts := range scraped {
		total += len(ts.sections)
	}
	if total == 0 {
		slog.Warn("no sections scraped, existing snapshot left untouched")
		return nil
	}

	// The previous run's snapshot becomes the diff baseline.
	backedUp := false
	if cfg.OutputFormat != "json" {
		var err error
		backedUp, err = snapshot.BackupExisting(cfg.OutputFile)
		if err != nil {
			return fmt.Errorf("back up previous snapshot: %w", err)
		}
	}

	writer, err := createWriter(cfg.OutputFormat, cfg.OutputFile)
	if err != nil {
		return fmt.Errorf("create writer: %w", err)
	}
	for _, ts := range scraped {
		if err := writer.WriteTerm(ts.term, ts.sections); err != nil {
			writer.Close()
			return fmt.Errorf("write snapshot: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close writer: %w", err)
	}
	if err := writer.Validate(); err != nil {
		return fmt.Errorf("validate output: %w", err)
	}

	if backedUp {
		report, err := snapshot.CompareFiles(snapshot.BackupName(cfg.OutputFile), cfg.OutputFile)
		if err != nil {
			slog.Error("comparing snapshots", slog.Any("error", err))
		} else {
			snapshot.WriteReport(os.Stdout, report)
		}
	}
	return nil
}

func createWriter(format, filename string) (snapshot.OutputWriter, error) {
	switch format {
	case "json":
		return snapshot.NewJSONWriter(filename)
	case "csv":
		return snapshot.NewCSVWriter(filename)
	case "dual":
		jsonFilename := strings.TrimSuffix(filename, ".csv") + ".json"
		return snapshot.NewDualWriter(filename, jsonFilename)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

func writeHTMLViews(cfg *config.Config) {
	if cfg.CalendarFile == "" && cfg.ClassroomFile == "" {
		return
	}
	if cfg.OutputFormat == "json" {
		slog.Warn("html views require a csv snapshot, skipping")
		return
	}

	rows, err := snapshot.LoadRows(cfg.OutputFile)
	if err != nil {
		slog.Error("loading snapshot for html views", slog.Any("error", err))
		return
	}
	if cfg.CalendarFile != "" {
		if err := htmlreport.WriteCalendar(cfg.CalendarFile, rows); err != nil {
			slog.Error("writing calendar view", slog.Any("error", err))
		} else {
			slog.Info("calendar view written", slog.String("file", cfg.CalendarFile))
		}
	}
	if cfg.ClassroomFile != "" {
		if err := htmlreport.WriteClassroomSchedules(cfg.ClassroomFile, rows); err != nil {
			slog.Error("writing classroom view", slog.Any("error", err))
		} else {
			slog.Info("classroom view written", slog.String("file", cfg.ClassroomFile))
		}
	}
}

func printSummary(result *models.ScrapeResult, totalSections int, duration time.Duration, outputFile string) {
	separator := "--------------------------------------------------"
	fmt.Println("\n" + separator)
	fmt.Println("Scrape complete")
	fmt.Printf("  Total sections: %d\n", totalSections)
	if result != nil {
		successRate := 0.0
		if result.RequestCount > 0 {
			successRate = float64(result.RequestCount-result.ErrorCount) / float64(result.RequestCount) * 100
		}
		fmt.Printf("  Requests:       %d\n", result.RequestCount)
		fmt.Printf("  Success rate:   %.2f%%\n", successRate)
		fmt.Printf("  Errors:         %d\n", result.ErrorCount)
		fmt.Printf("  Auth retries:   %d\n", result.RetryCount)
		if len(result.ErrorsByType) > 0 {
			fmt.Printf("  Error types:    %v\n", result.ErrorsByType)
		}
	}
	fmt.Printf("  Duration:       %v\n", duration)
	fmt.Printf("  Output file:    %s\n", outputFile)
	fmt.Println(separator)
}

func newLogger(verbose bool) (*slog.Logger, *slog.LevelVar) {
	level := &slog.LevelVar{}
	if verbose {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if isTerminal(os.Stdout) {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler), level
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
