// Package main prints what a persistent mock store holds, product by
// product. The database is opened read-only, so it can run next to a
// stopped mock but not a running one.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/learninghub/learninghub/internal/domain"
)

const maxShown = 5

func main() {
	dbPath := os.Getenv("MOCK_DATA_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/.learninghub/db")
	}

	opts := badger.DefaultOptions(dbPath).
		WithReadOnly(true).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	fmt.Println("=== Database Inspection ===")
	fmt.Println()

	totalResources, totalTags := 0, 0
	for _, p := range domain.Products {
		resources, tags, err := inspect(db, p)
		if err != nil {
			log.Fatalf("Error iterating %s: %v", p, err)
		}
		totalResources += resources
		totalTags += tags
	}

	fmt.Println("=== Summary ===")
	fmt.Printf("Total resources: %d\n", totalResources)
	fmt.Printf("Total tags: %d\n", totalTags)
}

// inspect prints the first resources and the tag counts of p.
func inspect(db *badger.DB, p domain.Product) (resources, tags int, err error) {
	byType := map[domain.ResourceType]int{}
	var top domain.Tag

	err = db.View(func(txn *badger.Txn) error {
		prefix := []byte(string(p) + ":")
		it := txn.NewIterator(badger.IteratorOptions{Prefix: prefix, PrefetchValues: true, PrefetchSize: 100})
		defer it.Close()

		for it.Rewind(); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			key := string(item.Key())

			switch {
			case strings.HasPrefix(key, string(p)+":resource:"):
				err := item.Value(func(val []byte) error {
					var r domain.Resource
					if err := json.Unmarshal(val, &r); err != nil {
						return err
					}
					resources++
					byType[r.Type]++
					if resources <= maxShown {
						fmt.Printf("[%s] %s\n", p, r.Title)
						fmt.Printf("  ID: %s\n", r.ID)
						fmt.Printf("  Type: %s\n", r.Type)
						fmt.Printf("  Tags: %s\n", strings.Join(r.Tags, ", "))
						fmt.Printf("  Created: %s\n", r.CreatedAt.Format("2006-01-02 15:04:05"))
						fmt.Println()
					}
					return nil
				})
				if err != nil {
					log.Printf("Error reading resource %s: %v", key, err)
				}

			case strings.HasPrefix(key, string(p)+":tag:"):
				err := item.Value(func(val []byte) error {
					var t domain.Tag
					if err := json.Unmarshal(val, &t); err != nil {
						return err
					}
					tags++
					if t.UsageCount > top.UsageCount {
						top = t
					}
					return nil
				})
				if err != nil {
					log.Printf("Error reading tag %s: %v", key, err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}

	if resources > maxShown {
		fmt.Printf("  ... and %d more resources\n\n", resources-maxShown)
	}
	fmt.Printf("--- %s: %d resources (", p, resources)
	first := true
	for _, t := range domain.ResourceTypes {
		if !first {
			fmt.Print(", ")
		}
		first = false
		fmt.Printf("%d %s", byType[t], t)
	}
	fmt.Printf("), %d tags", tags)
	if top.Name != "" {
		fmt.Printf(", most used %q (%d)", top.Name, top.UsageCount)
	}
	fmt.Print("\n\n")
	return resources, tags, nil
}
