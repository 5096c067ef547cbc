// Package main is the bioassist CLI entry point.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"bioassist/internal/agent"
	"bioassist/internal/chunker"
	"bioassist/internal/config"
	"bioassist/internal/kb"
	"bioassist/internal/loader"
	"bioassist/internal/ollama"
	"bioassist/internal/tui"
	"bioassist/internal/web"
)

var version = "dev"

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	switch command := os.Args[1]; command {
	case "build":
		runBuild()
	case "add":
		runAdd()
	case "chat":
		runChat()
	case "serve":
		runServe()
	case "version", "--version", "-v":
		fmt.Printf("bioassist version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`bioassist - local RAG assistant over your documents

Usage:
  bioassist build [-config path] [-data dir]   rebuild the knowledge base
  bioassist add   [-config path] <file>...     add documents to an existing knowledge base
  bioassist chat  [-config path]               interactive chat in the terminal
  bioassist serve [-config path] [-addr addr]  chat web UI
  bioassist version
  bioassist help
`)
}

func loadConfig(path string) *config.AppConfig {
	var (
		cfg *config.AppConfig
		err error
	)
	if path == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(path)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func ollamaConfig(cfg *config.AppConfig) ollama.Config {
	return ollama.Config{
		BaseURL: cfg.Ollama.BaseURL,
		Timeout: time.Duration(cfg.Ollama.TimeoutSecs) * time.Second,
	}
}

func runBuild() {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	configPath := fs.String("config", "", "config file path")
	dataDir := fs.String("data", "", "source document directory (overrides config)")
	_ = fs.Parse(os.Args[2:])

	cfg := loadConfig(*configPath)
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	embedder := ollama.NewEmbedder(ollamaConfig(cfg), cfg.Ollama.EmbeddingModel)
	builder := kb.NewBuilder(
		loader.New(logger),
		chunker.New(cfg.Chunking.Size, cfg.Chunking.Overlap),
		embedder,
		cfg.Store.Path,
		cfg.Store.Collection,
		logger,
	)

	if err := builder.Build(context.Background(), cfg.DataDir); err != nil {
		if errors.Is(err, kb.ErrNoDocuments) {
			fmt.Fprintf(os.Stderr, "No documents found in %s. Add your documents there and rerun.\n", cfg.DataDir)
		} else {
			fmt.Fprintf(os.Stderr, "build failed: %v\n", err)
		}
		os.Exit(1)
	}
	fmt.Printf("Knowledge base built at %s\n", cfg.Store.Path)
}

func runAdd() {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	configPath := fs.String("config", "", "config file path")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: bioassist add [-config path] <file>...")
		os.Exit(1)
	}
	cfg := loadConfig(*configPath)

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ld := loader.New(logger)
	embedder := ollama.NewEmbedder(ollamaConfig(cfg), cfg.Ollama.EmbeddingModel)
	builder := kb.NewBuilder(
		ld,
		chunker.New(cfg.Chunking.Size, cfg.Chunking.Overlap),
		embedder,
		cfg.Store.Path,
		cfg.Store.Collection,
		logger,
	)

	docs := ld.LoadFiles(fs.Args())
	if err := builder.Append(context.Background(), docs); err != nil {
		switch {
		case errors.Is(err, kb.ErrStoreMissing):
			fmt.Fprintf(os.Stderr,
				"Knowledge base not found at %s. Build it first:\n  bioassist build\n", cfg.Store.Path)
		case errors.Is(err, kb.ErrModelMismatch):
			fmt.Fprintf(os.Stderr, "%v\nRebuild the knowledge base with:  bioassist build\n", err)
		case errors.Is(err, kb.ErrNoDocuments):
			fmt.Fprintln(os.Stderr, "None of the given files could be loaded.")
		default:
			fmt.Fprintf(os.Stderr, "add failed: %v\n", err)
		}
		os.Exit(1)
	}
	fmt.Printf("Added %d document(s) to %s\n", len(docs), cfg.Store.Path)
}

// newAgent opens the store and constructs the agent, halting with a
// user-facing message when the knowledge base or the models are not
// ready. Shared by chat and serve.
func newAgent(cfg *config.AppConfig, logger *zap.Logger) *agent.Agent {
	store, err := kb.OpenForQuery(cfg.Store.Path, cfg.Store.Collection, cfg.Ollama.EmbeddingModel)
	if err != nil {
		switch {
		case errors.Is(err, kb.ErrStoreMissing):
			fmt.Fprintf(os.Stderr,
				"Knowledge base not found or empty at %s.\nBuild it first:\n  bioassist build\nEnsure you have documents in %s.\n",
				cfg.Store.Path, cfg.DataDir)
		case errors.Is(err, kb.ErrModelMismatch):
			fmt.Fprintf(os.Stderr, "%v\nRebuild the knowledge base with:  bioassist build\n", err)
		default:
			fmt.Fprintf(os.Stderr, "failed to open knowledge base: %v\n", err)
		}
		os.Exit(1)
	}

	embedder := ollama.NewEmbedder(ollamaConfig(cfg), cfg.Ollama.EmbeddingModel)
	llm := ollama.NewLLM(ollamaConfig(cfg), cfg.Ollama.LLMModel)

	fmt.Println("Initializing assistant. This might take a moment...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := embedder.Verify(ctx); err != nil {
		fmt.Fprintf(os.Stderr,
			"Error initializing assistant: %v\nPlease check your Ollama installation and ensure the models were pulled (e.g. `ollama pull %s`).\n",
			err, cfg.Ollama.EmbeddingModel)
		os.Exit(1)
	}

	return agent.New(embedder, store, llm, cfg.Mode(),
		cfg.Agent.MaxContextChunks, cfg.Agent.Temperature, logger)
}

func runChat() {
	fs := flag.NewFlagSet("chat", flag.ExitOnError)
	configPath := fs.String("config", "", "config file path")
	_ = fs.Parse(os.Args[2:])

	cfg := loadConfig(*configPath)
	a := newAgent(cfg, zap.NewNop())

	header := fmt.Sprintf("model: %s | mode: %s | store: %s",
		cfg.Ollama.LLMModel, cfg.Agent.ContextMode, cfg.Store.Path)
	if _, err := tea.NewProgram(tui.New(a, header), tea.WithAltScreen()).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "chat session failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Goodbye!")
}

func runServe() {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "config file path")
	addr := fs.String("addr", "", "listen address (overrides config)")
	_ = fs.Parse(os.Args[2:])

	cfg := loadConfig(*configPath)
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	a := newAgent(cfg, logger)
	srv := web.NewServer(a, web.Info{
		LLMModel:    cfg.Ollama.LLMModel,
		ContextMode: cfg.Agent.ContextMode,
		StorePath:   cfg.Store.Path,
		DataDir:     cfg.DataDir,
	}, logger)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(cfg.Server.Addr) }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		if err != nil {
			logger.Fatal("server failed", zap.Error(err))
		}
	case <-sigCh:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Stop(ctx); err != nil {
			logger.Warn("shutdown", zap.Error(err))
		}
	}
}
