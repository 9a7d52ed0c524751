package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kingpin/v2"
	"github.com/gofiber/fiber/v2"
	_ "github.com/jsternberg/zap-logfmt"
	"go.uber.org/zap"

	"github.com/insightdelivered/statement-engine/internal/api"
	"github.com/insightdelivered/statement-engine/internal/config"
	"github.com/insightdelivered/statement-engine/internal/engine"
	"github.com/insightdelivered/statement-engine/internal/extractor"
	"github.com/insightdelivered/statement-engine/internal/models"
	"github.com/insightdelivered/statement-engine/internal/writer"
)

const version = "1.0.0"

var (
	configPath = kingpin.Flag("config", "Path to the application config file").Short('c').Default("config.yml").String()
	serveFlag  = kingpin.Flag("serve", "Run the HTTP API instead of converting files").Bool()
	password   = kingpin.Flag("password", "Password for locked statement PDFs").String()
	formatFlag = kingpin.Flag("format", "Statement format: phonepe, hdfc_account, hdfc_credit, bank_statement (auto-detected if omitted)").String()
	outputFlag = kingpin.Flag("output", "Output file path (defaults to input filename with the output extension)").Short('o').String()
	outFlag    = kingpin.Flag("out", "Output encoding").Default("json").Enum("json", "csv", "xlsx")
	metaFlag   = kingpin.Flag("metadata", "Include provenance rows in CSV output").Default("true").Bool()
	inputFiles = kingpin.Arg("files", "Statement PDFs to convert").ExistingFiles()
)

func main() {
	kingpin.Version(version)
	kingpin.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatalf("Error loading config: %v\n", err)
	}
	if err := cfg.Validate(); err != nil {
		fatalf("Invalid configuration: %v\n", err)
	}

	logger := newLogger(cfg)
	defer func() {
		_ = logger.Sync()
	}()

	eng := engine.New(logger, engine.Config{
		HomeCurrency:        cfg.Engine.HomeCurrency,
		DefaultType:         cfg.Engine.DefaultType,
		Categorize:          cfg.Engine.Categorize,
		DetectSubscriptions: cfg.Engine.DetectSubscriptions,
	})

	if *serveFlag {
		runServer(cfg, logger, eng)
		return
	}

	if len(*inputFiles) == 0 {
		kingpin.Usage()
		os.Exit(0)
	}

	format, err := models.ParseFormat(*formatFlag)
	if err != nil {
		fatalf("%v\n", err)
	}

	// Per-file naming when converting a batch.
	outPath := *outputFlag
	if len(*inputFiles) > 1 {
		outPath = ""
	}

	for _, inputPath := range *inputFiles {
		if err := processFile(eng, inputPath, format, outPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error processing %s: %v\n", inputPath, err)
			os.Exit(1)
		}
	}
}

func processFile(eng *engine.Engine, inputPath string, format models.Format, outputPath string) error {
	if ext := strings.ToLower(filepath.Ext(inputPath)); ext != ".pdf" {
		return fmt.Errorf("expected .pdf file, got %q", ext)
	}

	fmt.Printf("Processing: %s\n", inputPath)

	doc, err := extractor.Extract(inputPath, *password)
	if err != nil {
		return fmt.Errorf("PDF extraction failed: %w", err)
	}

	fmt.Printf("  Extracted text from %d page(s) via %s\n", len(doc.Pages), doc.Method)

	res := eng.ExtractAs(models.Document{
		SourceFile: filepath.Base(inputPath),
		Method:     doc.Method,
		Pages:      doc.Pages,
	}, format)

	fmt.Printf("  Detected format: %s\n", res.Metadata.Format)
	fmt.Printf("  Found %d transaction(s)\n", res.Metadata.TotalTransactions)

	if res.Metadata.TotalTransactions == 0 {
		fmt.Println("  Warning: No transactions found. The PDF layout may not match expected patterns.")
		fmt.Println("  Try specifying the format explicitly with --format if auto-detection was used.")
	}

	outPath := outputPath
	if outPath == "" {
		base := strings.TrimSuffix(inputPath, filepath.Ext(inputPath))
		outPath = base + "." + *outFlag
	}

	if err := writeResult(outPath, res); err != nil {
		return err
	}

	fmt.Printf("  Output: %s\n", outPath)
	fmt.Println("  Done.")
	return nil
}

func writeResult(path string, res *models.ExtractionResult) error {
	switch *outFlag {
	case "csv":
		w := &writer.CSVWriter{IncludeMetadata: *metaFlag}
		return w.WriteToFile(path, res)
	case "xlsx":
		w := &writer.XLSXWriter{}
		return w.WriteToFile(path, res)
	default:
		w := &writer.JSONWriter{}
		return w.WriteToFile(path, res)
	}
}

func runServer(cfg *config.Config, logger *zap.Logger, eng *engine.Engine) {
	app := fiber.New(fiber.Config{
		AppName:   cfg.Application,
		BodyLimit: cfg.Server.BodyLimitMB << 20,
	})
	api.NewHandler(logger, eng).Register(app)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Info("listening", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(cfg *config.Config) *zap.Logger {
	zcfg := zap.NewProductionConfig()
	zcfg.Encoding = "logfmt"
	_ = zcfg.Level.UnmarshalText([]byte(cfg.Logger.Level))
	zcfg.InitialFields = make(map[string]any)
	zcfg.InitialFields["host"], _ = os.Hostname()
	zcfg.InitialFields["service"] = cfg.Application
	zcfg.OutputPaths = []string{"stdout"}
	logger, _ := zcfg.Build()
	return logger
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(1)
}
