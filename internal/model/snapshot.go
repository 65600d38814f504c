package model

import "time"

// Snapshot is an archived copy of a history.
type Snapshot struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Source    string         `json:"source,omitempty"`
	Version   uint32         `json:"format_version"`
	PoolSizes [PoolCount]int `json:"pool_sizes"`
	Sentences int            `json:"sentences"`
	CreatedAt time.Time      `json:"created_at"`
	History   *History       `json:"-"`
}

// SentenceMatch is a stored sentence found by an archive search.
type SentenceMatch struct {
	SnapshotID string `json:"snapshot_id"`
	Name       string `json:"name"`
	Pool       int    `json:"pool"`
	Position   int    `json:"position"`
	Text       string `json:"text"`
}
