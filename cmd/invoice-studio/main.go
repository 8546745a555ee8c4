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

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/miramuse/invoice-studio/internal/capture"
	"github.com/miramuse/invoice-studio/internal/extraction"
	"github.com/miramuse/invoice-studio/internal/invoice"
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

	fs := ff.NewFlagSet("invoice-studio")
	var (
		port            = fs.IntLong("port", 8080, "HTTP server port")
		dbPath          = fs.StringLong("db", "invoice-studio.db", "Export history database file path")
		exportsPath     = fs.StringLong("exports", "./exports", "Directory for generated PDF artifacts")
		extractorType   = fs.StringLong("extractor", "none", "Extraction backend: 'gemini', 'ollama' or 'none'")
		geminiKey       = fs.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel     = fs.StringLong("gemini-model", "gemini-2.5-flash", "Google Gemini model name")
		ollamaURL       = fs.StringLong("ollama-url", "http://localhost:11434", "Ollama API base URL")
		ollamaModel     = fs.StringLong("ollama-model", "llama3", "Ollama model name")
		chromePath      = fs.StringLong("chrome-path", "", "Path to the Chrome/Chromium executable")
		downloadBrowser = fs.BoolLong("download-browser", "Download a Chromium binary when none is installed")
		noSandbox       = fs.BoolLong("no-sandbox", "Disable the Chrome sandbox (needed when running as root)")
		settleMS        = fs.IntLong("settle-ms", 150, "Delay in milliseconds before rasterizing, letting layout settle")
		authUser        = fs.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass        = fs.StringLong("auth-pass", "", "Basic auth password (optional)")
		showVersion     = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("INVOICE_STUDIO"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	// Initialize export history database
	slog.Info("Initializing export history database...")
	db, err := invoice.NewBoltDB(*dbPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Initialize extractor based on type
	var extractor extraction.Extractor
	switch *extractorType {
	case "gemini":
		apiKey := *geminiKey
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		if apiKey == "" {
			slog.Error("Gemini API key is required. Set --gemini-key flag or GEMINI_API_KEY environment variable")
			os.Exit(1)
		}
		slog.Info("Initializing Gemini extractor...", "model", *geminiModel)
		extractor, err = extraction.NewGemini(apiKey, *geminiModel)
		if err != nil {
			slog.Error("Failed to initialize Gemini", "error", err)
			os.Exit(1)
		}
	case "ollama":
		slog.Info("Initializing Ollama extractor...", "url", *ollamaURL, "model", *ollamaModel)
		extractor, err = extraction.NewOllama(*ollamaURL, *ollamaModel)
		if err != nil {
			slog.Error("Failed to initialize Ollama", "error", err)
			os.Exit(1)
		}
	case "none":
		slog.Info("Extraction disabled")
	default:
		slog.Error("Invalid extractor type", "type", *extractorType, "valid", "gemini, ollama or none")
		os.Exit(1)
	}
	if extractor != nil {
		defer extractor.Close()
	}

	// Initialize artifact storage
	slog.Info("Initializing storage...")
	store, err := invoice.NewLocalStorage(*exportsPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}

	// Start the headless browser for the capture pipeline
	slog.Info("Starting headless browser...")
	browserOpts := []capture.BrowserOption{
		capture.WithSettleDelay(time.Duration(*settleMS) * time.Millisecond),
	}
	if *chromePath != "" {
		browserOpts = append(browserOpts, capture.WithChromePath(*chromePath))
	}
	if *downloadBrowser {
		browserOpts = append(browserOpts, capture.WithAutoDownload())
	}
	if *noSandbox {
		browserOpts = append(browserOpts, capture.WithNoSandbox())
	}
	rasterizer, err := capture.NewChromeRasterizer(browserOpts...)
	if err != nil {
		slog.Error("Failed to start browser", "error", err)
		os.Exit(1)
	}
	defer rasterizer.Close()

	pipeline := capture.NewPipeline(rasterizer)

	// Initialize render surface and service
	renderer, err := invoice.NewRenderer()
	if err != nil {
		slog.Error("Failed to initialize renderer", "error", err)
		os.Exit(1)
	}
	service := invoice.NewService(renderer, pipeline, extractor, db, store)

	// Initialize server
	basicAuth := invoice.BasicAuth{
		Username: *authUser,
		Password: *authPass,
	}
	server := invoice.NewServer(service, basicAuth)

	// Start server in goroutine
	addr := fmt.Sprintf(":%d", *port)
	go func() {
		if err := server.Start(addr); err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr))
	if *authUser != "" || *authPass != "" {
		slog.Info("Basic auth enabled", "user", *authUser)
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down...")
}
