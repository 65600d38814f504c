package store

import (
	"context"

	"github.com/rcliao/libime-history-merge/internal/model"
)

// Search finds archived sentences whose text contains the query as a
// literal, case-sensitive substring.
// Newest snapshots come first; within a snapshot, tier then position order.
func (s *SQLiteStore) Search(ctx context.Context, p SearchParams) ([]model.SentenceMatch, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT sn.id, sn.name, se.pool, se.pos, se.text
		FROM sentences se
		INNER JOIN snapshots sn ON sn.id = se.snapshot_id
		WHERE instr(se.text, ?) > 0
		ORDER BY sn.id DESC, se.pool, se.pos
		LIMIT ?`, p.Query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := []model.SentenceMatch{}
	for rows.Next() {
		var m model.SentenceMatch
		if err := rows.Scan(&m.SnapshotID, &m.Name, &m.Pool, &m.Position, &m.Text); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}
