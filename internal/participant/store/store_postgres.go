package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"rollcall/internal/participant"
)

// PostgresStore persists participants in PostgreSQL. Append order is captured
// by a bigserial sequence so ListAll can return the collection exactly as it
// was appended.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// OpenPostgres connects with the lib/pq driver and verifies the connection.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the participants table when it does not exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS participants (
			seq                 BIGSERIAL PRIMARY KEY,
			id                  TEXT NOT NULL UNIQUE,
			full_name           TEXT NOT NULL,
			email               TEXT NOT NULL,
			phone               TEXT NOT NULL,
			role                TEXT NOT NULL,
			company_name        TEXT NOT NULL DEFAULT '',
			years_of_experience INT,
			department          TEXT NOT NULL DEFAULT '',
			current_year        INT,
			created_at          TIMESTAMPTZ NOT NULL
		)
	`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("ensure participants schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Append(ctx context.Context, rec participant.Record) error {
	query := `
		INSERT INTO participants (
			id, full_name, email, phone, role,
			company_name, years_of_experience, department, current_year, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(ctx, query,
		rec.ID,
		rec.FullName,
		rec.Email,
		rec.Phone,
		string(rec.Role),
		rec.CompanyName,
		rec.YearsOfExperience,
		rec.Department,
		rec.CurrentYear,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert participant: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListAll(ctx context.Context) ([]participant.Record, error) {
	query := `
		SELECT id, full_name, email, phone, role,
		       company_name, years_of_experience, department, current_year, created_at
		FROM participants
		ORDER BY seq
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query participants: %w", err)
	}
	defer rows.Close()

	records := []participant.Record{}
	for rows.Next() {
		var (
			rec  participant.Record
			role string
		)
		err := rows.Scan(
			&rec.ID,
			&rec.FullName,
			&rec.Email,
			&rec.Phone,
			&role,
			&rec.CompanyName,
			&rec.YearsOfExperience,
			&rec.Department,
			&rec.CurrentYear,
			&rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		rec.Role = participant.Role(role)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate participants: %w", err)
	}
	return records, nil
}
