// Package main is the KissanVaani CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/kissanvaani/kissanvaani/internal/audio"
	"github.com/kissanvaani/kissanvaani/internal/config"
	"github.com/kissanvaani/kissanvaani/internal/embedding"
	"github.com/kissanvaani/kissanvaani/internal/expand"
	"github.com/kissanvaani/kissanvaani/internal/ingest"
	"github.com/kissanvaani/kissanvaani/internal/models"
	"github.com/kissanvaani/kissanvaani/internal/pipeline"
	"github.com/kissanvaani/kissanvaani/internal/retrieval"
	"github.com/kissanvaani/kissanvaani/internal/server"
	"github.com/kissanvaani/kissanvaani/internal/storage"
	"github.com/kissanvaani/kissanvaani/internal/stt"
	"github.com/kissanvaani/kissanvaani/internal/translate"
	"github.com/kissanvaani/kissanvaani/internal/tts"
	"github.com/kissanvaani/kissanvaani/internal/vector"
	"github.com/kissanvaani/kissanvaani/internal/watcher"
	"github.com/kissanvaani/kissanvaani/pkg/utils"
	"go.uber.org/zap"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/kissanvaani/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists
// it is used. Returns the config and the path that was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	switch os.Args[1] {
	case "server":
		runServer()
	case "ask":
		runAsk()
	case "ingest":
		runIngest()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("kissanvaani version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger, debugMode)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	var watchCancel context.CancelFunc
	if cfg.Watch.Enabled && cfg.Storage.CorpusDir != "" {
		ing := components.Ingester
		watchOpts := []watcher.Option{}
		if debugMode {
			watchOpts = append(watchOpts, watcher.WithLogger(logger))
		}
		watchSvc := watcher.NewWatcher(cfg.Storage.CorpusDir, cfg.Watch.Extensions,
			func(path string) {
				if _, err := ing.IngestFile(context.Background(), path); err != nil {
					logger.Warn("corpus reingest failed", zap.String("path", path), zap.Error(err))
				}
			},
			watchOpts...,
		)
		var watchCtx context.Context
		watchCtx, watchCancel = context.WithCancel(context.Background())
		if err := watchSvc.Start(watchCtx); err != nil {
			logger.Fatal("Failed to start corpus watcher", zap.Error(err))
		}
	}

	srv := server.NewServer(
		components.Pipeline,
		components.Ingester,
		components.Store,
		components.VectorIndex,
		&cfg.Server,
		cfg.Storage.ArtifactsDir,
		logger,
	)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	if cfg.Storage.VectorIndexPath != "" && components.VectorIndex != nil {
		if err := components.VectorIndex.Save(cfg.Storage.VectorIndexPath); err != nil {
			logger.Warn("vector index save failed", zap.String("path", cfg.Storage.VectorIndexPath), zap.Error(err))
		}
	}
	if watchCancel != nil {
		watchCancel()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func runAsk() {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8000", "server URL")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: kissanvaani ask [flags] <audio-file>")
		os.Exit(1)
	}
	path := fs.Arg(0)

	resp, err := askViaHTTP(*serverURL, path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ask failed: %v\n", err)
		os.Exit(1)
	}
	if resp.Error != "" {
		fmt.Printf("error: %s\n", resp.Error)
		return
	}
	fmt.Printf("hinglish: %s\n", resp.HinglishText)
	fmt.Printf("queries:  %v\n", resp.SearchQueries)
	for i, a := range resp.Answers {
		fmt.Printf("\n[%d] EN: %s\n", i+1, a.English)
		fmt.Printf("    HI: %s\n", a.Hindi)
		if a.AudioEN != nil {
			fmt.Printf("    audio_en: %s%s\n", *serverURL, *a.AudioEN)
		}
		if a.AudioHI != nil {
			fmt.Printf("    audio_hi: %s%s\n", *serverURL, *a.AudioHI)
		}
	}
}

// askViaHTTP uploads the audio file to POST /ask and decodes the response.
func askViaHTTP(serverURL, path string) (*models.AskResponse, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(fw, f); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	resp, err := http.Post(serverURL+"/ask", mw.FormDataContentType(), &body)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var out models.AskResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}

func runIngest() {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: kissanvaani ingest [flags] <file-or-directory>")
		os.Exit(1)
	}
	path := fs.Arg(0)

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger, cfg.Debug)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer components.Close()

	ctx := context.Background()
	info, err := os.Stat(path)
	if err != nil {
		fmt.Printf("Failed to stat path: %v\n", err)
		os.Exit(1)
	}
	var n int
	if info.IsDir() {
		n, err = components.Ingester.IngestDirectory(ctx, path)
	} else {
		n, err = components.Ingester.IngestFile(ctx, path)
	}
	if err != nil {
		fmt.Printf("Ingestion failed: %v\n", err)
		os.Exit(1)
	}
	if err := components.VectorIndex.Save(cfg.Storage.VectorIndexPath); err != nil {
		fmt.Printf("Vector index save failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Ingested %d entrie(s) from %s\n", n, path)
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8000", "server URL (empty = use direct storage)")
	_ = fs.Parse(os.Args[2:])

	if *serverURL != "" {
		resp, err := http.Get(*serverURL + "/api/v1/status")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(resp.Body)
			fmt.Fprintf(os.Stderr, "Status failed (%d): %s\n", resp.StatusCode, string(b))
			os.Exit(1)
		}
		var out struct {
			Entries         int64 `json:"entries"`
			VectorIndexSize int   `json:"vector_index_size"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			fmt.Fprintf(os.Stderr, "Parse failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("entries:            %d\n", out.Entries)
		fmt.Printf("vector_index_size:  %d\n", out.VectorIndexSize)
		return
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	components, err := initializeComponents(cfg, logger, cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer components.Close()
	count, err := components.Store.CountEntries(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Count entries failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("entries:            %d\n", count)
	fmt.Printf("vector_index_size:  %d\n", components.VectorIndex.Size())
}

// Components holds initialized services.
type Components struct {
	Store       storage.Store
	Embedder    embedding.Embedder
	VectorIndex vector.Index
	Ingester    *ingest.Ingester
	Pipeline    *pipeline.Pipeline
}

func (c *Components) Close() {
	if c.Store != nil {
		_ = c.Store.Close()
	}
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
	if c.VectorIndex != nil {
		_ = c.VectorIndex.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger, debug bool) (*Components, error) {
	store, err := storage.NewSQLiteStore(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	var embedder embedding.Embedder
	onnxEmbedder, err := embedding.NewONNXEmbedder(
		cfg.Embedding.ModelPath,
		cfg.Embedding.Dimensions,
		cfg.Embedding.MaxTokens,
		cfg.Embedding.CacheSize,
	)
	if err != nil {
		logger.Warn("ONNX embedder unavailable, using deterministic fallback", zap.Error(err))
		embedder = embedding.NewMockEmbedder(cfg.Embedding.Dimensions)
	} else {
		embedder = onnxEmbedder
	}

	vectorIndex, err := vector.NewMemoryIndex(cfg.Embedding.Dimensions)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize vector index: %w", err)
	}
	if cfg.Storage.VectorIndexPath != "" {
		if loadErr := vectorIndex.Load(cfg.Storage.VectorIndexPath); loadErr != nil {
			logger.Warn("vector index load skipped", zap.String("path", cfg.Storage.VectorIndexPath), zap.Error(loadErr))
		}
	}
	logger.Info("vector index initialized", zap.Int("size", vectorIndex.Size()))

	ingOpts := []ingest.Option{}
	if debug {
		ingOpts = append(ingOpts, ingest.WithLogger(logger))
	}
	ingester := ingest.NewIngester(store, embedder, vectorIndex, ingOpts...)

	retriever := retrieval.NewRetriever(embedder, vectorIndex, store, cfg.Retrieval.TopKPerQuery)
	engine := retrieval.NewEngine(retriever, cfg.Retrieval.MaxAnswers, logger)
	expander := expand.NewExpander(cfg.Expansion.Terms, cfg.Expansion.Templates)

	var transcriber stt.Engine
	if cfg.Engines.Whisper.Endpoint != "" {
		transcriber = stt.NewOpenAIEngine(cfg.Engines.Whisper.Endpoint, cfg.Engines.Whisper.APIKey, cfg.Engines.Whisper.Model)
	} else {
		transcriber = stt.NewWhisperCLI(cfg.Engines.Whisper.Command, cfg.Engines.Whisper.ModelPath)
	}

	if err := os.MkdirAll(cfg.Storage.ArtifactsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create artifacts dir: %w", err)
	}

	pipe := pipeline.New(
		audio.NewNormalizer(cfg.Engines.FFmpegPath, ""),
		transcriber,
		expander,
		engine,
		translate.NewGoogleTranslator(cfg.Engines.Translate.Endpoint, time.Duration(cfg.Engines.Translate.TimeoutSeconds)*time.Second),
		tts.NewGoogleSynthesizer(cfg.Engines.TTS.Endpoint, time.Duration(cfg.Engines.TTS.TimeoutSeconds)*time.Second),
		pipeline.Settings{
			ArtifactsDir:   cfg.Storage.ArtifactsDir,
			Language:       cfg.Engines.Whisper.Language,
			FallbackAnswer: cfg.Retrieval.FallbackAnswer,
		},
		logger,
	)

	return &Components{
		Store:       store,
		Embedder:    embedder,
		VectorIndex: vectorIndex,
		Ingester:    ingester,
		Pipeline:    pipe,
	}, nil
}

func printUsage() {
	fmt.Println(`kissanvaani - Voice farming Q&A service

Usage:
  kissanvaani server [flags]            Start the HTTP server
  kissanvaani ask [flags] <audio-file>  Send an audio question to a running server
  kissanvaani ingest [flags] <path>     Ingest a Q&A corpus file or directory
  kissanvaani status [flags]            Show corpus/index status
  kissanvaani version                   Show version
  kissanvaani help                      Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/kissanvaani/config.yaml)
  --debug            Enable debug logging

Ask Flags:
  --server string    Server URL (default: http://localhost:8000)

Ingest Flags:
  --config string    Config file path

Status Flags:
  --config string    Config file path (for direct storage mode)
  --server string    Server URL (default: http://localhost:8000). Use empty (--server "") for direct storage.

Examples:
  kissanvaani server
  kissanvaani ask question.webm
  kissanvaani ingest corpus/apple_farming.xlsx
  kissanvaani status`)
}
