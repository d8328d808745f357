// Package migrations embebe y aplica las migraciones SQL de los stores de
// sesión (postgres y sqlite).
//
// Formato de archivo: {version}_{name}.sql (ej: 0001_sessions.sql).
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strconv"
)

//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS

// Dialect es el subdirectorio de migraciones y el estilo de placeholder.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// Placeholder retorna el placeholder posicional i (1-based).
func (d Dialect) Placeholder(i int) string {
	if d == Postgres {
		return "$" + strconv.Itoa(i)
	}
	return "?"
}

// Migration representa una migración individual.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

var migrationFilePattern = regexp.MustCompile(`^(\d+)_(.+)\.sql$`)

// Parse lee las migraciones del dialecto ordenadas por versión.
func Parse(d Dialect) ([]Migration, error) {
	var out []Migration
	err := fs.WalkDir(FS, string(d), func(p string, e fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if e.IsDir() {
			return nil
		}
		m := migrationFilePattern.FindStringSubmatch(path.Base(p))
		if m == nil {
			return nil
		}
		version, _ := strconv.Atoi(m[1])
		content, err := FS.ReadFile(p)
		if err != nil {
			return fmt.Errorf("reading %s: %w", p, err)
		}
		out = append(out, Migration{Version: version, Name: m[2], SQL: string(content)})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// Run aplica las migraciones pendientes y retorna las versiones aplicadas.
func Run(ctx context.Context, db *sql.DB, d Dialect) ([]int, error) {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS _migrations (
		version INT PRIMARY KEY,
		name TEXT NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("creating migrations table: %w", err)
	}

	applied := map[int]bool{}
	rows, err := db.QueryContext(ctx, "SELECT version FROM _migrations")
	if err != nil {
		return nil, fmt.Errorf("getting applied migrations: %w", err)
	}
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			rows.Close()
			return nil, err
		}
		applied[v] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	migs, err := Parse(d)
	if err != nil {
		return nil, fmt.Errorf("parsing migrations: %w", err)
	}

	var done []int
	insert := fmt.Sprintf("INSERT INTO _migrations (version, name) VALUES (%s, %s)", d.Placeholder(1), d.Placeholder(2))
	for _, m := range migs {
		if applied[m.Version] {
			continue
		}
		if _, err := db.ExecContext(ctx, m.SQL); err != nil {
			return done, fmt.Errorf("applying migration %d_%s: %w", m.Version, m.Name, err)
		}
		if _, err := db.ExecContext(ctx, insert, m.Version, m.Name); err != nil {
			return done, fmt.Errorf("recording migration %d_%s: %w", m.Version, m.Name, err)
		}
		done = append(done, m.Version)
	}
	return done, nil
}
