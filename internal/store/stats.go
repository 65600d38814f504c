package store

import (
	"context"
	"fmt"
	"os"
)

// Stats holds archive statistics.
type Stats struct {
	DBPath        string      `json:"db_path"`
	DBSizeBytes   int64       `json:"db_size_bytes"`
	Snapshots     int         `json:"snapshots"`
	Sentences     int         `json:"sentences"`
	DistinctTexts int         `json:"distinct_sentences"`
	Names         []NameStats `json:"names"`
}

// NameStats holds per-name snapshot counts.
type NameStats struct {
	Name      string `json:"name"`
	Snapshots int    `json:"snapshots"`
}

// Stats returns archive statistics.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath}

	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	counts := []struct {
		query string
		dest  *int
	}{
		{`SELECT COUNT(*) FROM snapshots`, &st.Snapshots},
		{`SELECT COUNT(*) FROM sentences`, &st.Sentences},
		{`SELECT COUNT(DISTINCT words) FROM sentences`, &st.DistinctTexts},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("stats: %w", err)
		}
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT name, COUNT(*) AS cnt
		FROM snapshots
		GROUP BY name ORDER BY cnt DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var n NameStats
		if err := rows.Scan(&n.Name, &n.Snapshots); err != nil {
			return nil, fmt.Errorf("stats: %w", err)
		}
		st.Names = append(st.Names, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}

	return st, nil
}
