package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/rs/zerolog"

	"github.com/dvloznov/pharmacy-sales/internal/config"
	"github.com/dvloznov/pharmacy-sales/internal/export"
	"github.com/dvloznov/pharmacy-sales/internal/gcs"
	"github.com/dvloznov/pharmacy-sales/internal/logger"
	"github.com/dvloznov/pharmacy-sales/internal/pipeline"
	"github.com/dvloznov/pharmacy-sales/internal/runs/inmemory"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "summarize":
		runSummarize(os.Args[2:])
	case "inspect":
		runInspect(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Pharmacy Sales CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  summarize  Build the sales dashboard tables from a point-of-sale export")
	fmt.Println("  inspect    Print the cash sales read from an export")
	fmt.Println("  help       Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

// setup loads configuration and builds the logger and service shared by
// every command.
func setup(configPath string) (*config.Config, zerolog.Logger, *pipeline.Service) {
	log := logger.New()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log, err = logger.NewFromOptions(cfg.LoggerOptions())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create logger")
	}

	normalizer := cfg.Normalizer()
	aggregator := cfg.Aggregator()
	svc := pipeline.NewService(pipeline.ServiceOptions{
		Normalizer: &normalizer,
		Aggregator: &aggregator,
		Runs:       inmemory.NewStore(),
		Fetcher:    gcs.NewFetcher(cfg.MaxUploadBytes, gcs.ClientOptions(cfg.GCSEndpoint, cfg.GCSCredentialsFile)...),
		Timeout:    cfg.PipelineTimeout,
	})
	return cfg, log, svc
}

func summarize(ctx context.Context, svc *pipeline.Service, source string) (*pipeline.Dashboard, error) {
	if gcs.IsURI(source) {
		return svc.SummarizeURI(ctx, source)
	}
	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", source, err)
	}
	return svc.Summarize(ctx, filepath.Base(source), data)
}

func runSummarize(args []string) {
	fs := flag.NewFlagSet("summarize", flag.ExitOnError)
	source := fs.String("source", "", "Path or gs:// URI of the point-of-sale export (xlsx or csv)")
	format := fs.String("format", "text", "Output format: json, text, csv or xlsx")
	out := fs.String("out", "", "Write output to this file instead of stdout")
	configPath := fs.String("config", "", "Path to a config file (optional)")
	fs.Parse(args)

	_, log, svc := setup(*configPath)

	if *source == "" {
		log.Fatal().Msg("Error: -source is required")
	}
	outFormat, err := export.ParseFormat(*format)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid -format")
	}
	if outFormat == export.FormatXLSX && *out == "" {
		log.Fatal().Msg("Error: -out is required for xlsx output")
	}

	ctx := logger.WithContext(context.Background(), log)

	dash, err := summarize(ctx, svc, *source)
	if err != nil {
		log.Fatal().Err(err).Msg("Summarize failed")
	}

	var w io.Writer = os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create output file")
		}
		defer f.Close()
		w = f
	}

	if err := export.Write(w, outFormat, dash); err != nil {
		log.Fatal().Err(err).Msg("Failed to write output")
	}

	if *out != "" {
		log.Info().Str("out", *out).Str("format", string(outFormat)).Msg("Dashboard written")
	}
}

func runInspect(args []string) {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	source := fs.String("source", "", "Path or gs:// URI of the point-of-sale export (xlsx or csv)")
	configPath := fs.String("config", "", "Path to a config file (optional)")
	fs.Parse(args)

	_, log, svc := setup(*configPath)

	if *source == "" {
		log.Fatal().Msg("Error: -source is required")
	}

	ctx := logger.WithContext(context.Background(), log)

	dash, err := summarize(ctx, svc, *source)
	if err != nil {
		log.Fatal().Err(err).Msg("Inspect failed")
	}

	fmt.Println("\n=== Export ===")
	fmt.Printf("Source:     %s\n", dash.Source)
	fmt.Printf("SHA-256:    %s\n", dash.FileHash)
	fmt.Printf("Cash sales: %d\n", len(dash.Transactions))
	for _, w := range dash.Warnings {
		fmt.Printf("Warning:    %s\n", w)
	}

	fmt.Printf("\n=== Cash sales (%d) ===\n", len(dash.Transactions))
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Row\tFecha\tHora\tImporte\tDivisa\tT.C.")
	for _, tx := range dash.Transactions {
		amount, rate := "-", "-"
		if tx.Amount.Valid {
			amount = tx.Amount.Decimal.StringFixed(2)
		}
		if tx.ExchangeRate.Valid {
			rate = tx.ExchangeRate.Decimal.String()
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", tx.SourceRow+1, tx.Date, tx.Time, amount, tx.Currency, rate)
	}
	tw.Flush()
	fmt.Println()
}
