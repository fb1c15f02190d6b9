package main

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/zombor/bill-extractor/internal/bill"
	"github.com/zombor/bill-extractor/internal/scanning"
	"github.com/zombor/bill-extractor/internal/scanning/tesseract"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	// A missing .env is fine; real environment variables still apply
	_ = godotenv.Load()

	fs := ff.NewFlagSet("bill-extractor")
	var (
		port            = fs.IntLong("port", 8080, "HTTP server port")
		dbPath          = fs.StringLong("db", "bill-extractor.db", "Database file path")
		storagePath     = fs.StringLong("storage", "./documents", "Storage directory path")
		engine          = fs.StringLong("engine", "tesseract", "OCR engine: 'tesseract', 'gemini' or 'ollama'")
		tesseractLang   = fs.StringLong("tesseract-lang", "eng", "Tesseract languages, '+' separated (e.g. eng+hin)")
		geminiKey       = fs.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel     = fs.StringLong("gemini-model", "gemini-2.5-pro", "Google Gemini model name")
		ollamaURL       = fs.StringLong("ollama-url", "http://localhost:11434", "Ollama API base URL")
		ollamaModel     = fs.StringLong("ollama-model", "qwen2.5vl", "Ollama vision model name (e.g., qwen2.5vl, qwen2-vl)")
		dpi             = fs.Float64Long("dpi", scanning.DefaultDPI, "Resolution PDF pages are rendered at")
		fetchTimeout    = fs.DurationLong("fetch-timeout", bill.DefaultFetchTimeout, "Timeout for downloading a document")
		maxDocumentSize = fs.Int64Long("max-document-size", bill.DefaultMaxDocumentSize, "Largest accepted document in bytes")
		ocrConcurrency  = fs.IntLong("ocr-concurrency", 2, "Pages recognized at the same time")
		authUser        = fs.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass        = fs.StringLong("auth-pass", "", "Basic auth password (optional)")
		showVersion     = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("BILL_EXTRACTOR"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Check version flag after parsing
	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	// Initialize database
	slog.Info("Initializing database...")
	db, err := bill.NewBoltDB(*dbPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Initialize recognizer based on engine
	var recognizer scanning.Recognizer
	switch *engine {
	case "tesseract":
		slog.Info("Initializing Tesseract recognizer...", "languages", *tesseractLang)
		recognizer = tesseract.New(strings.Split(*tesseractLang, "+")...)
	case "gemini":
		// Get Gemini API key from flag or environment
		apiKey := *geminiKey
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		if apiKey == "" {
			slog.Error("Gemini API key is required. Set --gemini-key flag or GEMINI_API_KEY environment variable")
			os.Exit(1)
		}
		slog.Info("Initializing Gemini recognizer...", "model", *geminiModel)
		recognizer, err = scanning.NewGemini(apiKey, *geminiModel)
		if err != nil {
			slog.Error("Failed to initialize Gemini", "error", err)
			os.Exit(1)
		}
	case "ollama":
		slog.Info("Initializing Ollama recognizer...", "url", *ollamaURL, "model", *ollamaModel)
		recognizer, err = scanning.NewOllama(*ollamaURL, *ollamaModel)
		if err != nil {
			slog.Error("Failed to initialize Ollama", "error", err)
			os.Exit(1)
		}
	default:
		slog.Error("Invalid OCR engine", "engine", *engine, "valid", "tesseract, gemini or ollama")
		os.Exit(1)
	}
	defer recognizer.Close()

	// Initialize storage
	slog.Info("Initializing storage...")
	store, err := bill.NewLocalStorage(*storagePath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}

	// Initialize service
	fetcher := bill.NewHTTPFetcher(*fetchTimeout, *maxDocumentSize)
	billService := bill.NewService(db, store, recognizer, fetcher, bill.Options{
		DPI:            *dpi,
		OCRConcurrency: *ocrConcurrency,
	})

	// Initialize server
	basicAuth := bill.BasicAuth{
		Username: *authUser,
		Password: *authPass,
	}
	server := bill.NewServer(billService, basicAuth, *maxDocumentSize)

	// Start server in goroutine
	addr := fmt.Sprintf(":%d", *port)
	go func() {
		if err := server.Start(addr); err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Server started",
		"address", fmt.Sprintf("http://localhost%s", addr),
		"engine", *engine,
		"fetch_timeout", fetchTimeout.String(),
		"started_at", time.Now().Format(time.RFC3339),
	)
	if *authUser != "" || *authPass != "" {
		slog.Info("Basic auth enabled", "user", *authUser)
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down...")
}
