package links

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS internal_links (
	property       TEXT    NOT NULL,
	position       INTEGER NOT NULL,
	id             TEXT    NOT NULL,
	title          TEXT    NOT NULL,
	url            TEXT    NOT NULL,
	summary        TEXT    NOT NULL DEFAULT '',
	anchors        TEXT[]  NOT NULL DEFAULT '{}',
	operator       TEXT    NOT NULL DEFAULT '',
	always_include BOOLEAN NOT NULL DEFAULT FALSE,
	vector         FLOAT8[] NOT NULL,
	PRIMARY KEY (property, position)
)`

// PostgresStore keeps link indexes in one table, a row per link.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore connects to PostgreSQL and creates the table if needed.
func NewPostgresStore(connectionString string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := NewPostgresStoreFromDB(db)
	if err := store.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// NewPostgresStoreFromDB wraps an existing connection pool.
func NewPostgresStoreFromDB(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the internal_links table.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create internal_links table: %w", err)
	}
	return nil
}

// Load reads a property index in ingest order.
func (s *PostgresStore) Load(ctx context.Context, property string) (*Index, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, url, summary, anchors, operator, always_include, vector
		FROM internal_links
		WHERE property = $1
		ORDER BY position
	`, property)
	if err != nil {
		return nil, fmt.Errorf("failed to query internal links: %w", err)
	}
	defer rows.Close()

	var (
		records []Record
		vectors [][]float64
	)
	for rows.Next() {
		var (
			rec    Record
			vector pq.Float64Array
		)
		if err := rows.Scan(&rec.ID, &rec.Title, &rec.URL, &rec.Summary,
			pq.Array(&rec.Anchors), &rec.Operator, &rec.AlwaysInclude, &vector); err != nil {
			return nil, fmt.Errorf("failed to scan internal link: %w", err)
		}
		records = append(records, rec)
		vectors = append(vectors, []float64(vector))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrIndexNotFound
	}
	return NewIndex(records, vectors), nil
}

// Save replaces every row of a property inside one transaction.
func (s *PostgresStore) Save(ctx context.Context, property string, index *Index) error {
	records, vectors := index.Records(), index.Vectors()
	if len(records) != len(vectors) {
		return fmt.Errorf("link index for %s has %d records but %d vectors", property, len(records), len(vectors))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM internal_links WHERE property = $1`, property); err != nil {
		return fmt.Errorf("failed to clear internal links: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO internal_links
			(property, position, id, title, url, summary, anchors, operator, always_include, vector)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range records {
		anchors := rec.Anchors
		if anchors == nil {
			anchors = []string{}
		}
		if _, err := stmt.ExecContext(ctx, property, i, rec.ID, rec.Title, rec.URL, rec.Summary,
			pq.Array(anchors), rec.Operator, rec.AlwaysInclude, pq.Float64Array(vectors[i])); err != nil {
			return fmt.Errorf("failed to insert internal link %s: %w", rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit internal links: %w", err)
	}
	return nil
}

// Close closes the connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
