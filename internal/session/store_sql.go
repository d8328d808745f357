package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dropDatabas3/habo/internal/domain/repository"
	"github.com/dropDatabas3/habo/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// SQLStore guarda sesiones en la tabla habo_sessions. La expiración se
// chequea en cada Get y DeleteExpired barre las vencidas.
type SQLStore struct {
	db      *sql.DB
	dialect migrations.Dialect
	pool    *pgxpool.Pool
	now     func() time.Time
}

// OpenSQLite abre (o crea) la base en path y aplica migraciones.
func OpenSQLite(ctx context.Context, path string) (*SQLStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("session: sqlite path is required")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("session: open sqlite: %w", err)
	}
	// SQLite serializa escrituras; una conexión evita SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("session: sqlite pragma: %w", err)
	}
	return newSQLStore(ctx, db, migrations.SQLite, nil)
}

// OpenPostgres abre un pgxpool y lo expone como *sql.DB para compartir el
// código con SQLite.
func OpenPostgres(ctx context.Context, dsn string) (*SQLStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("session: postgres dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("session: open postgres: %w", err)
	}
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("session: postgres ping: %w", err)
	}
	return newSQLStore(ctx, stdlib.OpenDBFromPool(pool), migrations.Postgres, pool)
}

func newSQLStore(ctx context.Context, db *sql.DB, d migrations.Dialect, pool *pgxpool.Pool) (*SQLStore, error) {
	if _, err := migrations.Run(ctx, db, d); err != nil {
		_ = db.Close()
		if pool != nil {
			pool.Close()
		}
		return nil, fmt.Errorf("session: migrate: %w", err)
	}
	return &SQLStore{db: db, dialect: d, pool: pool, now: time.Now}, nil
}

func (s *SQLStore) ph(i int) string { return s.dialect.Placeholder(i) }

// expiresArg: sqlite guarda epoch millis, postgres timestamptz.
func (s *SQLStore) expiresArg(t time.Time) any {
	if s.dialect == migrations.SQLite {
		return t.UnixMilli()
	}
	return t.UTC()
}

func (s *SQLStore) Get(ctx context.Context, key string) (*repository.SessionRecord, error) {
	q := fmt.Sprintf("SELECT data FROM habo_sessions WHERE sid = %s AND expires_at > %s", s.ph(1), s.ph(2))
	var data []byte
	err := s.db.QueryRowContext(ctx, q, key, s.expiresArg(s.now())).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var rec repository.SessionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *SQLStore) Set(ctx context.Context, key string, rec *repository.SessionRecord, ttl time.Duration) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	q := fmt.Sprintf(`INSERT INTO habo_sessions (sid, data, expires_at) VALUES (%s, %s, %s)
		ON CONFLICT (sid) DO UPDATE SET data = excluded.data, expires_at = excluded.expires_at`,
		s.ph(1), s.ph(2), s.ph(3))
	_, err = s.db.ExecContext(ctx, q, key, string(b), s.expiresArg(s.now().Add(ttl)))
	return err
}

func (s *SQLStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM habo_sessions WHERE sid = %s", s.ph(1)), key)
	return err
}

// DeleteExpired implementa repository.SessionSweeper.
func (s *SQLStore) DeleteExpired(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM habo_sessions WHERE expires_at <= %s", s.ph(1)), s.expiresArg(s.now()))
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (s *SQLStore) Close() error {
	err := s.db.Close()
	if s.pool != nil {
		s.pool.Close()
	}
	return err
}
