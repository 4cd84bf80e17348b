package scores

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Record is one scoreboard row: how a retired player finished.
type Record struct {
	Name     string  `json:"name"`
	Score    int     `json:"score"`
	PlayTime float64 `json:"playTime"` // seconds
}

// SQL statements, kept together so tests can pin them.
const (
	createTableSQL = `
CREATE TABLE IF NOT EXISTS retired_players (
	id serial PRIMARY KEY,
	name varchar(255) NOT NULL,
	score int NOT NULL,
	play_time real NOT NULL
)`
	createIndexSQL = `
CREATE INDEX IF NOT EXISTS idx_retired_players_rank
	ON retired_players (score DESC, play_time ASC, name ASC)`
	insertSQL = `INSERT INTO retired_players (name, score, play_time) VALUES ($1, $2, $3)`
	pageSQL   = `
SELECT name, score, play_time FROM retired_players
	ORDER BY score DESC, play_time ASC, name ASC
	LIMIT $1 OFFSET $2`
)

// Repository persists retirement records in PostgreSQL through a
// bounded database/sql pool.
type Repository struct {
	db *sql.DB
}

// Open connects to the scoreboard database, bounds the pool and makes
// sure the schema exists.
func Open(ctx context.Context, url string, maxConns int) (*Repository, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if maxConns < 1 {
		maxConns = 1
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	r := &Repository{db: db}
	if err := r.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

func (r *Repository) ensureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("create retired_players table: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, createIndexSQL); err != nil {
		return fmt.Errorf("create scoreboard index: %w", err)
	}
	return nil
}

// Insert stores one record at serializable isolation.
func (r *Repository) Insert(ctx context.Context, rec Record) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("begin insert: %w", err)
	}
	if _, err := tx.ExecContext(ctx, insertSQL, rec.Name, rec.Score, rec.PlayTime); err != nil {
		tx.Rollback()
		return fmt.Errorf("insert record: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit record: %w", err)
	}
	return nil
}

// Page reads one scoreboard page: best score first, faster play time
// and then name breaking ties. The result is never nil.
func (r *Repository) Page(ctx context.Context, start, maxItems int) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, pageSQL, maxItems, start)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	recs := []Record{}
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.Name, &rec.Score, &rec.PlayTime); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	return recs, nil
}

// Close releases the pool.
func (r *Repository) Close() error {
	return r.db.Close()
}
