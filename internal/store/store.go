// Package store provides the snapshot archive interface and SQLite implementation.
package store

import (
	"context"

	"github.com/rcliao/libime-history-merge/internal/model"
)

// PutParams holds parameters for archiving a history.
type PutParams struct {
	Name    string
	Source  string
	History *model.History
}

// ListParams holds parameters for listing snapshots.
type ListParams struct {
	Name  string
	Limit int
}

// SearchParams holds parameters for searching archived sentences.
type SearchParams struct {
	Query string
	Limit int
}

// Store defines the snapshot archive interface.
type Store interface {
	// Put archives a history. Returns the created snapshot.
	Put(ctx context.Context, p PutParams) (*model.Snapshot, error)

	// Get loads a snapshot, history included, by ID or unique ID prefix.
	Get(ctx context.Context, id string) (*model.Snapshot, error)

	// List lists snapshots, newest first.
	List(ctx context.Context, p ListParams) ([]model.Snapshot, error)

	// Search finds archived sentences containing the query.
	Search(ctx context.Context, p SearchParams) ([]model.SentenceMatch, error)

	// Rm deletes a snapshot and its sentences.
	Rm(ctx context.Context, id string) error

	// Close closes the store.
	Close() error
}
