package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"recordformatter/exporter"
	"recordformatter/importer"
	"recordformatter/internal/config"
	"recordformatter/internal/container"
	"recordformatter/internal/logging"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	inPath := flag.String("in", cfg.Input.Path, "Input file (.xlsx or .csv)")
	outPath := flag.String("out", cfg.Export.Path, "Output file (.xlsx, .csv, .json or .sqlite)")
	format := flag.String("format", "", "Output format (xlsx, csv, json, sqlite); detected from -out by default")
	enrich := flag.Bool("enrich", cfg.Enrichment.Enabled, "Resolve locality codes with the lookup services")
	nameMode := flag.String("name-mode", string(cfg.Export.NameMode), "Name output: combined or parts")
	sheet := flag.String("sheet", cfg.Input.Sheet, "Input sheet name (first sheet by default)")
	timeout := flag.Duration("timeout", 0, "Abort the run after this duration (0 disables)")
	flag.Parse()

	logger := logging.Setup(cfg.LogLevel, os.Stderr)

	opts := exporter.Options{
		SheetName:   cfg.Export.SheetName,
		IncludeCode: *enrich,
	}
	if *format != "" {
		if opts.Format, err = exporter.ParseFormat(*format); err != nil {
			log.Fatalf("invalid -format: %v", err)
		}
	}
	if opts.NameMode, err = exporter.ParseNameMode(*nameMode); err != nil {
		log.Fatalf("invalid -name-mode: %v", err)
	}

	// Флаг -enrich важнее ENRICHMENT_ENABLED
	cfg.Enrichment.Enabled = *enrich
	app, err := container.New(cfg, logger)
	if err != nil {
		log.Fatalf("failed to initialize: %v", err)
	}
	defer app.Close()

	processor, err := app.Processor(*enrich)
	if err != nil {
		log.Fatalf("failed to initialize processor: %v", err)
	}

	recs, err := importer.ImportFile(*inPath, importer.Options{
		Sheet:     *sheet,
		Separator: cfg.Input.Separator(),
		Encoding:  cfg.Input.CSVEncoding,
	})
	if err != nil {
		log.Fatalf("failed to read %s: %v", *inPath, err)
	}
	log.Printf("Loaded %d records from %s", len(recs), *inPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if *timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *timeout)
		defer cancel()
	}

	result, err := processor.Process(ctx, recs)
	if err != nil {
		// Строки без кода помечены маркером, результат все равно записывается
		log.Printf("Run interrupted, writing partial result: %v", err)
	}
	opts.RunID = result.RunID

	if err := exporter.ExportFile(*outPath, result.Records, opts); err != nil {
		log.Fatalf("failed to write %s: %v", *outPath, err)
	}

	fmt.Println("\n--- Record Formatting ---")
	fmt.Printf("Input:                 %s\n", *inPath)
	fmt.Printf("Output:                %s\n", *outPath)
	fmt.Printf("Run ID:                %s\n", result.RunID)
	fmt.Print(result.Stats.String())
	if app.Resolver != nil {
		stats := app.Resolver.CacheStats()
		fmt.Printf("Cache hits/misses:     %d/%d\n", stats.Hits, stats.Misses)
	}
}
