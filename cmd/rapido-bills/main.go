package main

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/zombor/rapido-bills/internal/receipt"
	"github.com/zombor/rapido-bills/internal/scanning"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	// Check for version flag before parsing other flags
	for _, arg := range args {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Fprintln(stdout, version)
			return 0
		}
	}

	// A missing .env file is not an error
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("Failed to load .env file", "error", err)
	}

	fs := ff.NewFlagSet("rapido-bills")
	var (
		dir      = fs.StringLong("dir", "", "Folder containing Rapido PDF bills")
		dbPath   = fs.StringLong("db", "rapido-bills.db", "Database file path")
		engine   = fs.StringLong("engine", scanning.EngineFitz, "Text engine: 'fitz' or 'pdf'")
		serve    = fs.BoolLong("serve", "Run the HTTP API instead of processing --dir once")
		port     = fs.IntLong("port", 8080, "HTTP server port")
		authUser = fs.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass = fs.StringLong("auth-pass", "", "Basic auth password (optional)")
		_        = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, args,
		ff.WithEnvVarPrefix("RAPIDO_BILLS"),
	); err != nil {
		fmt.Fprintf(stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	if !*serve && *dir == "" {
		fmt.Fprintf(stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintln(stderr, "error: --dir is required unless --serve is set")
		return 1
	}

	scanner, err := scanning.NewScanner(*engine)
	if err != nil {
		slog.Error("Failed to initialize scanner", "error", err)
		return 1
	}
	defer scanner.Close()

	slog.Info("Initializing database...", "path", *dbPath)
	db, err := receipt.NewBoltDB(*dbPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		return 1
	}
	defer db.Close()

	service := receipt.NewService(db, scanner, receipt.NewXLSXExporter())

	if *serve {
		return serveAPI(service, *port, receipt.BasicAuth{Username: *authUser, Password: *authPass})
	}
	return processFolder(service, *dir, stdout)
}

func processFolder(service *receipt.Service, dir string, stdout io.Writer) int {
	batch, receipts, err := service.ProcessFolder(dir)
	switch {
	case errors.Is(err, receipt.ErrNoDocuments):
		slog.Warn("No PDF files found in selected folder", "folder", dir)
		return 1
	case errors.Is(err, receipt.ErrNoReceipts):
		slog.Warn("No valid Rapido PDFs were processed", "folder", dir, "failures", len(batch.Failures))
		return 1
	case err != nil:
		slog.Error("Failed to process folder", "folder", dir, "error", err)
		return 1
	}

	fmt.Fprintln(stdout, "Extraction complete")
	fmt.Fprintf(stdout, "Receipts: %d, failed: %d, total fare: %s\n", len(receipts), len(batch.Failures), batch.TotalFare)
	fmt.Fprintln(stdout, "Original PDFs were not modified.")
	fmt.Fprintf(stdout, "Refined copies saved in: %s\n", batch.RefinedFolder)
	fmt.Fprintf(stdout, "Excel summary saved at: %s\n", batch.SummaryPath)
	return 0
}

func serveAPI(service *receipt.Service, port int, auth receipt.BasicAuth) int {
	server := receipt.NewServer(service, auth)

	addr := fmt.Sprintf(":%d", port)
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(addr)
	}()

	slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr))
	if auth.Username != "" || auth.Password != "" {
		slog.Info("Basic auth enabled", "user", auth.Username)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		slog.Error("Server error", "error", err)
		return 1
	case <-sigChan:
		slog.Info("Shutting down...")
		return 0
	}
}
