package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"talentsearch/internal/ai"
	"talentsearch/internal/app"
	"talentsearch/internal/bootstrap"
	"talentsearch/internal/config"
	"talentsearch/pkg/log"

	"gorm.io/gorm"
)

// ragctl runs the pipeline without the HTTP server, queue or auth:
// ingestion is synchronous and results print to stdout.
func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	log.Init(cfg.Log.Level, cfg.Log.Format)
	defer log.Sync()

	ctx := context.Background()

	var runErr error
	switch os.Args[1] {
	case "ingest":
		runErr = runIngest(ctx, cfg, os.Args[2:])
	case "query":
		runErr = runQuery(ctx, cfg, os.Args[2:])
	case "ask":
		runErr = runAsk(ctx, cfg, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", os.Args[1], runErr)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: ragctl <command> [flags]

commands:
  ingest --data <dir>          load, chunk, embed and store documents
  query  --q <text> [--k n]    retrieve relevant chunks for a query
  ask    --q <text> [--k n]    retrieve and generate an answer`)
}

func runIngest(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	dir := fs.String("data", "data", "directory with .pdf/.csv/.txt/.md files")
	fs.Parse(args)

	embedder, err := ai.NewEmbedder(cfg.Embedding)
	if err != nil {
		return err
	}
	store, db, err := bootstrap.NewStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeDB(db)

	svc := app.NewIngestService(embedder, store, cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlap, cfg.Embedding.BatchSize)
	report, err := svc.Ingest(ctx, *dir)
	if err != nil {
		return err
	}

	fmt.Printf("ingested %d documents into %d chunks (%d files skipped)\n",
		report.Documents, report.Chunks, report.SkippedFiles)
	if report.Rebuilt {
		fmt.Println("store was rebuilt: embedding dimension changed")
	}
	return nil
}

func runQuery(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	q := fs.String("q", "", "query text")
	k := fs.Int("k", cfg.Retrieval.TopK, "max results")
	fs.Parse(args)

	query, err := requireText(*q)
	if err != nil {
		return err
	}

	retrieval, cleanup, err := buildRetrieval(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	matches, err := retrieval.Retrieve(ctx, query, *k)
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		fmt.Println("no relevant results")
		return nil
	}
	for i, m := range matches {
		fmt.Printf("%d. [%.4f] %s (%s)\n", i+1, m.Score, m.Title, m.Source)
		fmt.Printf("   %s\n", truncate(m.Content, 200))
	}
	return nil
}

func runAsk(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	q := fs.String("q", "", "question text")
	k := fs.Int("k", cfg.Retrieval.TopK, "max context chunks")
	fs.Parse(args)

	question, err := requireText(*q)
	if err != nil {
		return err
	}

	retrieval, cleanup, err := buildRetrieval(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	generator, err := ai.NewGenerator(cfg.LLM)
	if err != nil {
		return err
	}

	svc := app.NewAnswerService(retrieval, generator)
	result, err := svc.Answer(ctx, question, *k)
	if err != nil {
		return err
	}

	fmt.Println(result.Answer)
	if len(result.Sources) > 0 {
		fmt.Println("\nsources:")
		for _, m := range result.Sources {
			fmt.Printf("  [%.4f] %s (%s)\n", m.Score, m.Title, m.Source)
		}
	}
	return nil
}

func buildRetrieval(ctx context.Context, cfg *config.Config) (*app.RetrievalService, func(), error) {
	embedder, err := ai.NewEmbedder(cfg.Embedding)
	if err != nil {
		return nil, nil, err
	}
	store, db, err := bootstrap.NewStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	svc := app.NewRetrievalService(embedder, store, cfg.Retrieval.RelevanceFloor, cfg.Retrieval.TopK)
	return svc, func() { closeDB(db) }, nil
}

// requireText validates the --q flag before any backend is dialed.
func requireText(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("query text is required (set --q)")
	}
	return s, nil
}

func closeDB(db *gorm.DB) {
	if db == nil {
		return
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
