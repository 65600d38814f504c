package store

import (
	"context"
	"fmt"

	"github.com/rcliao/libime-history-merge/internal/model"
)

// Export is a portable archived snapshot, history included.
type Export struct {
	model.Snapshot
	Pools [model.PoolCount]model.Pool `json:"pools"`
}

// ExportAll returns every snapshot with its history, oldest first,
// optionally filtered by name.
func (s *SQLiteStore) ExportAll(ctx context.Context, name string) ([]Export, error) {
	query := `SELECT id FROM snapshots`
	var args []interface{}
	if name != "" {
		query += ` WHERE name = ?`
		args = append(args, name)
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	exports := make([]Export, 0, len(ids))
	for _, id := range ids {
		snap, err := s.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("export %s: %w", id, err)
		}
		exports = append(exports, Export{Snapshot: *snap, Pools: snap.History.Pools})
	}
	return exports, nil
}

// Import archives snapshots from an export. Each one gets a new ID.
func (s *SQLiteStore) Import(ctx context.Context, exports []Export) (int, error) {
	imported := 0
	for _, e := range exports {
		if e.Version != model.VersionLegacy && e.Version != model.VersionCompressed {
			return imported, fmt.Errorf("import %s: unsupported format version %d", e.Name, e.Version)
		}
		h := &model.History{Magic: model.Magic, Version: e.Version, Pools: e.Pools}
		_, err := s.Put(ctx, PutParams{
			Name:    e.Name,
			Source:  e.Source,
			History: h,
		})
		if err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}
