package fraud

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PostgresStore persists fraud records in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a PostgreSQL-backed fraud record store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the fraud_records table if it doesn't exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS fraud_records (
			transaction_id VARCHAR(128) PRIMARY KEY,
			amount         BIGINT NOT NULL,
			is_fraud       BOOLEAN NOT NULL DEFAULT FALSE,
			batch_order    INTEGER NOT NULL DEFAULT 0
		);

		CREATE INDEX IF NOT EXISTS idx_fraud_records_is_fraud
			ON fraud_records (is_fraud) WHERE is_fraud;
	`)
	return err
}

// ReplaceAll deletes the previous batch and inserts the new one in a single
// transaction. Uploads are replace-not-append; a failure anywhere rolls the
// whole table back to the previous upload.
func (s *PostgresStore) ReplaceAll(ctx context.Context, records []Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM fraud_records`); err != nil {
		return fmt.Errorf("failed to clear fraud records: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO fraud_records (transaction_id, amount, is_fraud, batch_order)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (transaction_id) DO UPDATE
			SET amount = EXCLUDED.amount, is_fraud = EXCLUDED.is_fraud
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, r := range records {
		if _, err := stmt.ExecContext(ctx, r.TransactionID, r.Amount, r.IsFraud, i); err != nil {
			return fmt.Errorf("failed to insert record %s: %w", r.TransactionID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, transactionID string) (*Record, error) {
	var r Record
	err := s.db.QueryRowContext(ctx, `
		SELECT transaction_id, amount, is_fraud
		FROM fraud_records
		WHERE transaction_id = $1
	`, transactionID).Scan(&r.TransactionID, &r.Amount, &r.IsFraud)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get fraud record: %w", err)
	}
	return &r, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT transaction_id, amount, is_fraud
		FROM fraud_records
		ORDER BY batch_order
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list fraud records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.TransactionID, &r.Amount, &r.IsFraud); err != nil {
			return nil, fmt.Errorf("failed to scan fraud record: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM fraud_records`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count fraud records: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM fraud_records`); err != nil {
		return fmt.Errorf("failed to clear fraud records: %w", err)
	}
	return nil
}
