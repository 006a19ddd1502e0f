// Package main loads fixtures into a persistent mock store.
//
// The mock serves whatever the store holds, so a seeded directory can be
// reused across runs with MOCK_DATA_PATH and without MOCK_FIXTURES.
//
// Usage:
//
//	MOCK_DATA_PATH=~/.learninghub/db go run ./cmd/seed
//	go run ./cmd/seed -data ./data -fixtures ./fixtures.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/learninghub/learninghub/internal/domain"
	"github.com/learninghub/learninghub/internal/fixtures"
	"github.com/learninghub/learninghub/internal/store"
)

var (
	dataPath     = flag.String("data", "", "Badger directory (default: $MOCK_DATA_PATH or $HOME/.learninghub/db)")
	fixturesPath = flag.String("fixtures", "", "YAML fixtures file (default: built-in sample data)")
)

func main() {
	flag.Parse()

	dbPath := *dataPath
	if dbPath == "" {
		dbPath = os.Getenv("MOCK_DATA_PATH")
	}
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/.learninghub/db")
	}

	file := fixtures.Default()
	if *fixturesPath != "" {
		var err error
		if file, err = fixtures.Load(*fixturesPath); err != nil {
			log.Fatalf("Failed to load fixtures: %v", err)
		}
	}

	fmt.Printf("Opening database at: %s\n", dbPath)

	s, err := store.Open(dbPath, nil)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	if err := fixtures.Apply(ctx, s, file); err != nil {
		log.Fatalf("Failed to seed store: %v", err)
	}

	for _, p := range domain.Products {
		tags, err := s.ListTags(ctx, p)
		if err != nil {
			log.Fatalf("Failed to read tags of %s: %v", p, err)
		}
		fmt.Printf("  %-6s %3d resources  %3d tags\n", p, len(file.Resources(p)), len(tags))
	}

	fmt.Printf("\nSeeded %d resources\n", file.Count())
}
