package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	"github.com/joseph-ayodele/labreport-import/constants"
	"github.com/joseph-ayodele/labreport-import/internal/common"
	"github.com/joseph-ayodele/labreport-import/internal/core/pipeline"
	"github.com/joseph-ayodele/labreport-import/internal/entity"
	"github.com/joseph-ayodele/labreport-import/internal/server"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		file    = flag.String("file", "", "PDF lab report to import (required)")
		label   = flag.String("label", "", "free-text label, only logged")
		addr    = flag.String("addr", "", "labimportd gRPC address; extract locally when empty")
		debug   = flag.Bool("debug", false, "enable debug logs")
		timeout = flag.Duration("timeout", 5*time.Minute, "overall deadline")
	)
	flag.Parse()

	if *file == "" {
		printError("Error: --file is required\n")
		os.Exit(1)
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		printError("Warning: failed to load .env: %v\n", err)
	}

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	pdf, err := os.ReadFile(*file)
	if err != nil {
		printError("Error: read %s: %v\n", *file, err)
		os.Exit(1)
	}
	if len(pdf) > constants.MaxUploadBytes {
		printError("Error: %s exceeds %d bytes\n", *file, constants.MaxUploadBytes)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	var res entity.ExtractionResult
	if *addr != "" {
		res, err = extractRemote(ctx, *addr, pdf, *label)
		if err != nil {
			printError("Error: remote extraction: %v\n", err)
			os.Exit(1)
		}
	} else {
		cfg := common.LoadConfig()
		if err := cfg.Validate(); err != nil {
			printError("Error: %v\n", err)
			os.Exit(1)
		}
		res = pipeline.NewFromConfig(cfg, logger).Extract(ctx, pdf, *label)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(server.NewResultView(res)); err != nil {
		printError("Error: encode result: %v\n", err)
		os.Exit(1)
	}
}

func extractRemote(ctx context.Context, addr string, pdf []byte, label string) (entity.ExtractionResult, error) {
	conn, err := grpc.NewClient(addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.MaxCallSendMsgSize(constants.MaxUploadBytes+1<<20)),
	)
	if err != nil {
		return entity.ExtractionResult{}, err
	}
	defer func() { _ = conn.Close() }()

	if label != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, server.LabelHeader, label)
	}
	st, err := server.NewLabImportClient(conn).ExtractReport(ctx, pdf)
	if err != nil {
		return entity.ExtractionResult{}, err
	}
	return server.ResultFromStruct(st)
}
