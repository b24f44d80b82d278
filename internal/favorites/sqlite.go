package favorites

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"StockWatch/internal/model"
)

// SQLiteStore keeps the watchlist in a SQLite table ordered by position.
type SQLiteStore struct {
	db  *sql.DB
	mu  sync.Mutex
	log zerolog.Logger
}

// NewSQLiteStore opens (or creates) the database, runs migrations and seeds
// defaults the first time the database is created.
func NewSQLiteStore(dbPath string, defaults []model.FavoriteEntry, log zerolog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db, log: log}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if defaults == nil {
		defaults = DefaultEntries
	}
	if err := s.seed(defaults); err != nil {
		db.Close()
		return nil, fmt.Errorf("seed: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite favorites store opened")
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS favorites (
			code     TEXT PRIMARY KEY,
			name     TEXT NOT NULL,
			position INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_favorites_position ON favorites(position)`,
		`CREATE TABLE IF NOT EXISTS store_meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:30], err)
		}
	}
	return nil
}

// seed inserts defaults once; an emptied list stays empty.
func (s *SQLiteStore) seed(defaults []model.FavoriteEntry) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`INSERT OR IGNORE INTO store_meta (key, value) VALUES ('seeded', '1')`)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil
	}
	if err := writeEntries(context.Background(), tx, defaults); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStore) List(ctx context.Context) ([]model.FavoriteEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list(ctx)
}

func (s *SQLiteStore) Add(ctx context.Context, entry model.FavoriteEntry) ([]model.FavoriteEntry, error) {
	entry, err := validate(entry)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var exists int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM favorites WHERE code = ?`, entry.Code).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check favorite: %w", err)
	}
	if exists > 0 {
		return nil, ErrDuplicate
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO favorites (code, name, position)
		 VALUES (?, ?, (SELECT COALESCE(MAX(position), -1) + 1 FROM favorites))`,
		entry.Code, entry.Name,
	); err != nil {
		return nil, fmt.Errorf("insert favorite: %w", err)
	}
	return s.list(ctx)
}

func (s *SQLiteStore) Remove(ctx context.Context, code string) ([]model.FavoriteEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM favorites WHERE code = ?`, code); err != nil {
		return nil, fmt.Errorf("delete favorite: %w", err)
	}
	return s.list(ctx)
}

func (s *SQLiteStore) Reorder(ctx context.Context, codes []string) ([]model.FavoriteEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.list(ctx)
	if err != nil {
		return nil, err
	}
	ordered := reorder(current, codes)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM favorites`); err != nil {
		return nil, fmt.Errorf("clear favorites: %w", err)
	}
	if err := writeEntries(ctx, tx, ordered); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit reorder: %w", err)
	}
	return ordered, nil
}

func (s *SQLiteStore) Close() error {
	s.log.Info().Msg("closing sqlite favorites store")
	return s.db.Close()
}

func (s *SQLiteStore) list(ctx context.Context) ([]model.FavoriteEntry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT code, name FROM favorites ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query favorites: %w", err)
	}
	defer rows.Close()

	list := []model.FavoriteEntry{}
	for rows.Next() {
		var f model.FavoriteEntry
		if err := rows.Scan(&f.Code, &f.Name); err != nil {
			return nil, err
		}
		list = append(list, f)
	}
	return list, rows.Err()
}

func writeEntries(ctx context.Context, tx *sql.Tx, list []model.FavoriteEntry) error {
	for i, f := range list {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO favorites (code, name, position) VALUES (?, ?, ?)`,
			f.Code, f.Name, i,
		); err != nil {
			return fmt.Errorf("insert favorite %s: %w", f.Code, err)
		}
	}
	return nil
}
