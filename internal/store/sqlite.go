package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/rcliao/libime-history-merge/internal/model"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db      *sql.DB
	entropy *ulid.MonotonicEntropy
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
// The archive holds typing history, so the database is owner-only. SQLite
// gives its -wal and -shm files the mode of the database file.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	if err := ownerOnly(dbPath); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if err := ownerOnly(dbPath); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// ownerOnly creates path if missing and restricts it to the owner.
func ownerOnly(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return fmt.Errorf("create db file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("create db file: %w", err)
	}
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Chmod(p, 0o600); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("restrict %s: %w", p, err)
		}
	}
	return nil
}

func (s *SQLiteStore) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		id             TEXT PRIMARY KEY,
		name           TEXT NOT NULL,
		source         TEXT,
		magic          INTEGER NOT NULL,
		format_version INTEGER NOT NULL,
		pool0_size     INTEGER NOT NULL,
		pool1_size     INTEGER NOT NULL,
		pool2_size     INTEGER NOT NULL,
		created_at     TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_snapshots_name ON snapshots(name);

	CREATE TABLE IF NOT EXISTS sentences (
		snapshot_id TEXT NOT NULL REFERENCES snapshots(id) ON DELETE CASCADE,
		pool        INTEGER NOT NULL,
		pos         INTEGER NOT NULL,
		words       TEXT NOT NULL,
		text        TEXT NOT NULL,
		PRIMARY KEY (snapshot_id, pool, pos)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) Put(ctx context.Context, p PutParams) (*model.Snapshot, error) {
	if p.History == nil {
		return nil, fmt.Errorf("put: no history given")
	}
	now := time.Now().UTC()
	id := s.newID()
	h := p.History

	name := p.Name
	if name == "" && p.Source != "" {
		name = filepath.Base(p.Source)
	}
	if name == "" {
		name = "snapshot"
	}

	var source *string
	if p.Source != "" {
		source = &p.Source
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO snapshots (id, name, source, magic, format_version, pool0_size, pool1_size, pool2_size, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, name, source, h.Magic, h.Version,
		len(h.Pools[0]), len(h.Pools[1]), len(h.Pools[2]),
		now.Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("insert snapshot: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO sentences (snapshot_id, pool, pos, words, text) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("prepare sentence insert: %w", err)
	}
	defer stmt.Close()

	for i, pool := range h.Pools {
		for pos, sentence := range pool {
			words, err := json.Marshal(sentence)
			if err != nil {
				return nil, fmt.Errorf("encode sentence: %w", err)
			}
			if _, err := stmt.ExecContext(ctx, id, i, pos, string(words), sentence.String()); err != nil {
				return nil, fmt.Errorf("insert sentence: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	snap := &model.Snapshot{
		ID:        id,
		Name:      name,
		Source:    p.Source,
		Version:   h.Version,
		Sentences: h.Len(),
		CreatedAt: now,
		History:   h,
	}
	for i, pool := range h.Pools {
		snap.PoolSizes[i] = len(pool)
	}
	return snap, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*model.Snapshot, error) {
	fullID, err := s.resolveID(ctx, id)
	if err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, source, magic, format_version, pool0_size, pool1_size, pool2_size, created_at
		 FROM snapshots WHERE id = ?`, fullID)
	snap, magic, err := scanSnapshot(row)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT pool, words FROM sentences WHERE snapshot_id = ? ORDER BY pool, pos`, fullID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	h := &model.History{Magic: magic, Version: snap.Version}
	for rows.Next() {
		var pool int
		var words string
		if err := rows.Scan(&pool, &words); err != nil {
			return nil, err
		}
		if pool < 0 || pool >= model.PoolCount {
			return nil, fmt.Errorf("snapshot %s: bad pool index %d", fullID, pool)
		}
		var sentence model.Sentence
		if err := json.Unmarshal([]byte(words), &sentence); err != nil {
			return nil, fmt.Errorf("snapshot %s: decode sentence: %w", fullID, err)
		}
		h.Pools[pool] = append(h.Pools[pool], sentence)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	snap.History = h
	return &snap, nil
}

// resolveID expands a unique ID prefix to the full snapshot ID.
func (s *SQLiteStore) resolveID(ctx context.Context, prefix string) (string, error) {
	if prefix == "" {
		return "", fmt.Errorf("snapshot id is required")
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM snapshots WHERE id LIKE ? ORDER BY id LIMIT 2`, strings.ToUpper(prefix)+"%")
	if err != nil {
		return "", err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	switch len(ids) {
	case 0:
		return "", fmt.Errorf("snapshot not found: %s", prefix)
	case 1:
		return ids[0], nil
	default:
		return "", fmt.Errorf("snapshot id %s is ambiguous", prefix)
	}
}

func (s *SQLiteStore) List(ctx context.Context, p ListParams) ([]model.Snapshot, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT id, name, source, magic, format_version, pool0_size, pool1_size, pool2_size, created_at
	          FROM snapshots`
	var args []interface{}
	if p.Name != "" {
		query += ` WHERE name = ?`
		args = append(args, p.Name)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snaps []model.Snapshot
	for rows.Next() {
		snap, _, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}

func (s *SQLiteStore) Rm(ctx context.Context, id string) error {
	fullID, err := s.resolveID(ctx, id)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM sentences WHERE snapshot_id = ?`, fullID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM snapshots WHERE id = ?`, fullID); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSnapshot(row scanner) (model.Snapshot, uint32, error) {
	var snap model.Snapshot
	var source sql.NullString
	var magic uint32
	var createdAt string

	err := row.Scan(
		&snap.ID, &snap.Name, &source, &magic, &snap.Version,
		&snap.PoolSizes[0], &snap.PoolSizes[1], &snap.PoolSizes[2], &createdAt,
	)
	if err != nil {
		return snap, 0, err
	}

	snap.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	if source.Valid {
		snap.Source = source.String
	}
	for _, n := range snap.PoolSizes {
		snap.Sentences += n
	}
	return snap, magic, nil
}
