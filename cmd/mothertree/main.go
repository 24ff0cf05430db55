// Package main provides the mothertree CLI entry point.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hebraica/mothertree/pkg/config"
	"github.com/hebraica/mothertree/pkg/corpus"
	"github.com/hebraica/mothertree/pkg/mother"
	"github.com/hebraica/mothertree/pkg/server"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "mothertree",
		Short: "mothertree - Clause-tree editing service for parsed Hebrew Bible corpora",
		Long: `mothertree serves a parsed clause corpus over HTTP and lets clients
edit the mother (governing clause) relation against it.

Features:
  • Sparse in-memory overlay over an immutable corpus
  • Structural validation (ordering, containers, cycles, depth)
  • Linear undo/redo with atomic batch edits
  • Scoped tree projection (book / chapter / verse ranges)
  • Prebuilt on-disk corpus store for fast startup`,
	}

	// Version command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("mothertree v%s (%s)\n", version, commit)
		},
	})

	// Serve command
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the mothertree HTTP server",
		Long:  "Start the HTTP API, loading the corpus from the prebuilt store or a JSON export",
		RunE:  runServe,
	}
	serveCmd.Flags().String("config", "mothertree.yaml", "Config file path")
	serveCmd.Flags().Int("http-port", 0, "HTTP API port (overrides config)")
	serveCmd.Flags().String("data-dir", "", "Prebuilt corpus store directory (overrides config)")
	serveCmd.Flags().String("export-dir", "", "Corpus JSON export directory (overrides config)")
	rootCmd.AddCommand(serveCmd)

	// Import command
	importCmd := &cobra.Command{
		Use:   "import [export-dir]",
		Short: "Build the corpus store from a JSON export directory",
		Args:  cobra.ExactArgs(1),
		RunE:  runImport,
	}
	importCmd.Flags().String("data-dir", "./data", "Corpus store directory")
	rootCmd.AddCommand(importCmd)

	// Stats command
	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show corpus store statistics",
		RunE:  runStats,
	}
	statsCmd.Flags().String("data-dir", "./data", "Corpus store directory")
	rootCmd.AddCommand(statsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	httpPort, _ := cmd.Flags().GetInt("http-port")
	dataDir, _ := cmd.Flags().GetString("data-dir")
	exportDir, _ := cmd.Flags().GetString("export-dir")

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if httpPort != 0 {
		cfg.Server.Port = httpPort
	}
	if dataDir != "" {
		cfg.Corpus.DataDir = dataDir
	}
	if exportDir != "" {
		cfg.Corpus.ExportDir = exportDir
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	fmt.Printf("🚀 Starting mothertree v%s\n", version)
	fmt.Printf("   Corpus store:   %s\n", cfg.Corpus.DataDir)
	if cfg.Corpus.ExportDir != "" {
		fmt.Printf("   Corpus export:  %s\n", cfg.Corpus.ExportDir)
	}
	fmt.Printf("   HTTP API:       http://localhost:%d\n", cfg.Server.Port)
	fmt.Println()

	fmt.Println("📂 Loading corpus...")
	snap, err := loadCorpus(cfg)
	if err != nil {
		return fmt.Errorf("loading corpus: %w", err)
	}
	fmt.Printf("   ✅ Loaded %d clauses across %d books\n", snap.Len(), len(snap.Books()))

	rules := mother.Rules{
		EnforceContainer: cfg.Rules.EnforceContainer,
		AllowRootify:     cfg.Rules.AllowRootify,
		MaxDepth:         cfg.Rules.MaxDepth,
	}
	svc := mother.NewService(snap, rules)

	serverConfig := &server.Config{
		Address:        cfg.Server.Address,
		Port:           cfg.Server.Port,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxRequestSize: cfg.Server.MaxRequestSize,
		EnableCORS:     cfg.Server.EnableCORS,
		CORSOrigins:    cfg.Server.CORSOrigins,
	}

	httpServer, err := server.New(svc, serverConfig)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	if err := httpServer.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}

	fmt.Println()
	fmt.Println("✅ mothertree is ready!")
	fmt.Println()
	fmt.Println("Endpoints:")
	fmt.Printf("  • Tree:      GET  http://localhost:%d/tree?scope=Genesis.1\n", cfg.Server.Port)
	fmt.Printf("  • Reparent:  POST http://localhost:%d/mother/reparent\n", cfg.Server.Port)
	fmt.Printf("  • Rootify:   POST http://localhost:%d/mother/rootify\n", cfg.Server.Port)
	fmt.Printf("  • Batch:     POST http://localhost:%d/mother/reparent-batch\n", cfg.Server.Port)
	fmt.Printf("  • Undo/Redo: POST http://localhost:%d/mother/undo | /mother/redo\n", cfg.Server.Port)
	fmt.Printf("  • Health:    GET  http://localhost:%d/health\n", cfg.Server.Port)
	fmt.Println()
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	// Block until shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	fmt.Println("\n🛑 Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Stop(ctx); err != nil {
		return fmt.Errorf("stopping server: %w", err)
	}

	fmt.Println("✅ Server stopped gracefully")
	return nil
}

// loadCorpus prefers the prebuilt store; a JSON export is decoded only when
// the store is absent or empty.
func loadCorpus(cfg *config.Config) (*corpus.Snapshot, error) {
	if cfg.Corpus.DataDir != "" {
		if _, err := os.Stat(cfg.Corpus.DataDir); err == nil {
			store, err := corpus.OpenStore(corpus.StoreOptions{Dir: cfg.Corpus.DataDir, ReadOnly: true})
			if err == nil {
				defer store.Close()
				snap, err := store.ReadSnapshot()
				if err == nil {
					return snap, nil
				}
				if !errors.Is(err, corpus.ErrEmptyCorpus) {
					return nil, err
				}
				// Empty store; fall through to the export.
			}
		}
	}
	if cfg.Corpus.ExportDir == "" {
		return nil, fmt.Errorf("corpus store unavailable and no export directory configured")
	}
	return corpus.LoadExportDir(cfg.Corpus.ExportDir)
}

func runImport(cmd *cobra.Command, args []string) error {
	exportDir := args[0]
	dataDir, _ := cmd.Flags().GetString("data-dir")

	fmt.Printf("📥 Importing corpus from %s\n", exportDir)

	if _, err := os.Stat(exportDir); os.IsNotExist(err) {
		return fmt.Errorf("export directory not found: %s", exportDir)
	}

	startTime := time.Now()
	snap, err := corpus.LoadExportDir(exportDir)
	if err != nil {
		return fmt.Errorf("loading export: %w", err)
	}
	fmt.Printf("   ✅ Decoded %d clauses in %v\n", snap.Len(), time.Since(startTime))

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	store, err := corpus.OpenStore(corpus.StoreOptions{Dir: dataDir})
	if err != nil {
		return fmt.Errorf("opening corpus store: %w", err)
	}
	defer store.Close()

	startTime = time.Now()
	if err := store.WriteSnapshot(snap); err != nil {
		return fmt.Errorf("writing corpus store: %w", err)
	}
	fmt.Printf("✅ Corpus store written to %s in %v\n", dataDir, time.Since(startTime))

	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	dataDir, _ := cmd.Flags().GetString("data-dir")

	store, err := corpus.OpenStore(corpus.StoreOptions{Dir: dataDir, ReadOnly: true})
	if err != nil {
		return fmt.Errorf("opening corpus store: %w", err)
	}
	defer store.Close()

	snap, err := store.ReadSnapshot()
	if err != nil {
		return fmt.Errorf("reading corpus store: %w", err)
	}

	roots := 0
	for _, n := range snap.Nodes() {
		if n.OriginalMother == corpus.NoMother {
			roots++
		}
	}

	fmt.Println("📊 Corpus Statistics:")
	fmt.Printf("  Clauses: %d\n", snap.Len())
	fmt.Printf("  Books:   %d\n", len(snap.Books()))
	fmt.Printf("  Roots:   %d\n", roots)
	for _, book := range snap.Books() {
		sc := corpus.Scope{Book: book}
		fmt.Printf("  %-20s %d clauses\n", book, len(snap.FilterScope(&sc)))
	}
	return nil
}
