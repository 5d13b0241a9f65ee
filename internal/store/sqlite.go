package store

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"strafenkasse-service/internal/domain"
)

const timeFormat = time.RFC3339Nano

// SQLiteStore is the durable Store backend. Catalog entries and penalty
// records survive restarts, including sync keys, so re-running a sync after a
// restart never double-charges.
type SQLiteStore struct {
	db *sql.DB
}

func migrations() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS penalty_catalog (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			name       TEXT NOT NULL,
			name_key   TEXT NOT NULL UNIQUE,
			amount     INTEGER NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS penalties (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			player     TEXT NOT NULL,
			player_key TEXT NOT NULL,
			reason     TEXT NOT NULL,
			amount     INTEGER NOT NULL,
			status     TEXT NOT NULL,
			source     TEXT NOT NULL,
			sync_key   TEXT UNIQUE,
			created_at TEXT NOT NULL,
			paid_at    TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_penalties_player_key ON penalties(player_key)`,
	}
}

// OpenSQLite opens (and if needed creates) the sqlite database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	for _, stmt := range migrations() {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) InsertPenaltyType(ctx context.Context, t domain.PenaltyType) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO penalty_catalog (name, name_key, amount, created_at) VALUES (?, ?, ?, ?)`,
		t.Name, domain.NormalizeName(t.Name), int64(t.Amount), t.CreatedAt.UTC().Format(timeFormat),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateName
		}
		return fmt.Errorf("insert penalty type: %w", err)
	}
	return nil
}

func (s *SQLiteStore) DeletePenaltyType(ctx context.Context, nameKey string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM penalty_catalog WHERE name_key = ?`, nameKey)
	if err != nil {
		return fmt.Errorf("delete penalty type: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) ListPenaltyTypes(ctx context.Context) ([]domain.PenaltyType, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, amount, created_at FROM penalty_catalog ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list penalty types: %w", err)
	}
	defer rows.Close()

	var out []domain.PenaltyType
	for rows.Next() {
		var (
			t         domain.PenaltyType
			amount    int64
			createdAt string
		)
		if err := rows.Scan(&t.Name, &amount, &createdAt); err != nil {
			return nil, err
		}
		t.Amount = domain.Cents(amount)
		t.CreatedAt = parseTime(createdAt)
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) FindPenaltyType(ctx context.Context, nameKey string) (domain.PenaltyType, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT name, amount, created_at FROM penalty_catalog WHERE name_key = ?`, nameKey)

	var (
		t         domain.PenaltyType
		amount    int64
		createdAt string
	)
	if err := row.Scan(&t.Name, &amount, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return domain.PenaltyType{}, false, nil
		}
		return domain.PenaltyType{}, false, fmt.Errorf("find penalty type: %w", err)
	}
	t.Amount = domain.Cents(amount)
	t.CreatedAt = parseTime(createdAt)
	return t, true, nil
}

func (s *SQLiteStore) InsertPenalty(ctx context.Context, rec domain.PenaltyRecord) (domain.PenaltyRecord, error) {
	syncKey := sql.NullString{String: rec.SyncKey, Valid: rec.SyncKey != ""}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO penalties (player, player_key, reason, amount, status, source, sync_key, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Player, rec.PlayerKey, rec.Reason, int64(rec.Amount),
		string(rec.Status), string(rec.Source), syncKey, rec.CreatedAt.UTC().Format(timeFormat),
	)
	if err != nil {
		return domain.PenaltyRecord{}, fmt.Errorf("insert penalty: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.PenaltyRecord{}, err
	}
	rec.ID = id
	return rec, nil
}

const penaltyColumns = `id, player, player_key, reason, amount, status, source, sync_key, created_at, paid_at`

func (s *SQLiteStore) FindBySyncKey(ctx context.Context, key string) (domain.PenaltyRecord, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+penaltyColumns+` FROM penalties WHERE sync_key = ?`, key)
	rec, err := scanPenalty(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.PenaltyRecord{}, false, nil
		}
		return domain.PenaltyRecord{}, false, fmt.Errorf("find by sync key: %w", err)
	}
	return rec, true, nil
}

func (s *SQLiteStore) MarkPaid(ctx context.Context, playerKey string, paidAt time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE penalties SET status = ?, paid_at = ? WHERE player_key = ? AND status = ?`,
		string(domain.StatusPaid), paidAt.UTC().Format(timeFormat), playerKey, string(domain.StatusOpen),
	)
	if err != nil {
		return 0, fmt.Errorf("mark paid: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}

func (s *SQLiteStore) RecordsForPlayer(ctx context.Context, playerKey string) ([]domain.PenaltyRecord, error) {
	return s.queryPenalties(ctx,
		`SELECT `+penaltyColumns+` FROM penalties WHERE player_key = ? ORDER BY id DESC`, playerKey)
}

func (s *SQLiteStore) AllRecords(ctx context.Context) ([]domain.PenaltyRecord, error) {
	return s.queryPenalties(ctx,
		`SELECT `+penaltyColumns+` FROM penalties ORDER BY id`)
}

func (s *SQLiteStore) queryPenalties(ctx context.Context, query string, args ...any) ([]domain.PenaltyRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query penalties: %w", err)
	}
	defer rows.Close()

	out := make([]domain.PenaltyRecord, 0)
	for rows.Next() {
		rec, err := scanPenalty(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPenalty(row rowScanner) (domain.PenaltyRecord, error) {
	var (
		rec       domain.PenaltyRecord
		amount    int64
		status    string
		source    string
		syncKey   sql.NullString
		createdAt string
		paidAt    sql.NullString
	)
	if err := row.Scan(&rec.ID, &rec.Player, &rec.PlayerKey, &rec.Reason,
		&amount, &status, &source, &syncKey, &createdAt, &paidAt); err != nil {
		return domain.PenaltyRecord{}, err
	}
	rec.Amount = domain.Cents(amount)
	rec.Status = domain.PenaltyStatus(status)
	rec.Source = domain.PenaltySource(source)
	rec.SyncKey = syncKey.String
	rec.CreatedAt = parseTime(createdAt)
	if paidAt.Valid {
		at := parseTime(paidAt.String)
		rec.PaidAt = &at
	}
	return rec, nil
}

func parseTime(raw string) time.Time {
	t, err := time.Parse(timeFormat, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

var _ Store = (*SQLiteStore)(nil)
