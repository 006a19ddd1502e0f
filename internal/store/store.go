// Package store persists mock backend data in Badger. Every key is scoped by
// product:
//
//	<product>:resource:<id>  -> domain.Resource (JSON)
//	<product>:tag:<name>     -> domain.Tag (JSON)
package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/learninghub/learninghub/internal/domain"
)

const (
	resourceSegment = ":resource:"
	tagSegment      = ":tag:"
)

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
	now    func() time.Time

	resources map[domain.Product]*Entity[domain.Resource]
	tags      map[domain.Product]*Entity[domain.Tag]
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the timestamp source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open opens the database at path. An empty path opens an in-memory
// database that is discarded on Close.
func Open(path string, logger *slog.Logger, opts ...Option) (*Store, error) {
	bopts := badger.DefaultOptions(path)
	if path == "" {
		bopts = bopts.WithInMemory(true)
	} else {
		bopts.SyncWrites = true       // Ensure writes are synced to disk to prevent corruption on crashes
		bopts.CompactL0OnClose = true // Compact L0 tables on close for faster startup
	}
	bopts.Logger = nil // Disable Badger's internal logging

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &Store{
		db:        db,
		logger:    logger,
		now:       time.Now,
		resources: make(map[domain.Product]*Entity[domain.Resource], len(domain.Products)),
		tags:      make(map[domain.Product]*Entity[domain.Tag], len(domain.Products)),
	}
	for _, o := range opts {
		o(s)
	}

	for _, p := range domain.Products {
		s.resources[p] = NewEntity[domain.Resource](s, string(p)+resourceSegment)
		s.tags[p] = NewEntity[domain.Tag](s, string(p)+tagSegment)
	}

	if path == "" {
		logger.Info("Badger database opened in memory")
	} else {
		logger.Info("Badger database opened successfully", "path", path)
	}

	return s, nil
}

// Close gracefully closes the database connection.
func (s *Store) Close() error {
	s.logger.Info("Closing database connection")
	return s.db.Close()
}

// Reset drops every key of product p.
func (s *Store) Reset(ctx context.Context, p domain.Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !p.Valid() {
		return ErrInvalidProduct
	}
	prefix := []byte(string(p) + ":")
	var keys [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("scan %s: %w", p, err)
	}

	wb := s.db.NewWriteBatch()
	for _, k := range keys {
		if err := wb.Delete(k); err != nil {
			wb.Cancel()
			return fmt.Errorf("drop %s: %w", p, err)
		}
	}
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("drop %s: %w", p, err)
	}
	return nil
}

func (s *Store) entities(p domain.Product) (*Entity[domain.Resource], *Entity[domain.Tag], error) {
	res, ok := s.resources[p]
	if !ok {
		return nil, nil, ErrInvalidProduct
	}
	return res, s.tags[p], nil
}
