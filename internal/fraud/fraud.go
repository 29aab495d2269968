// Package fraud implements batch ingestion and analysis of financial
// transactions.
//
// Uploaded CSV batches flow through the column normalizer and the scoring
// engine, land in the fraud record store (replace, not append), and produce a
// snapshot other read paths share. Insights and explanations are derived
// read models over those two stores.
package fraud

import (
	"context"
	"errors"
)

// Client-side ingestion failures, mapped to 400 at the HTTP layer.
var (
	ErrNotCSV              = errors.New("only CSV files are allowed")
	ErrEmptyFile           = errors.New("the uploaded CSV file is empty")
	ErrMalformedCSV        = errors.New("failed to parse CSV file")
	ErrMissingAmountColumn = errors.New("no amount column found")
)

// ErrRecordNotFound is returned when a transaction id has no persisted record.
var ErrRecordNotFound = errors.New("fraud record not found")

// Record is the simplified persisted form of a scored transaction.
// Score and label detail are intentionally dropped; only the binary verdict
// survives the upload.
type Record struct {
	TransactionID string `json:"transaction_id"`
	Amount        int    `json:"amount"`
	IsFraud       bool   `json:"is_fraud"`
}

// Store persists fraud records for the most recent upload.
//
// ReplaceAll swaps the entire table for the new batch in one atomic step:
// either every record of the new upload is visible or the previous upload is
// untouched. TransactionID is the unique key; duplicate ids within a batch
// keep the last occurrence.
type Store interface {
	ReplaceAll(ctx context.Context, records []Record) error
	Get(ctx context.Context, transactionID string) (*Record, error)
	List(ctx context.Context) ([]Record, error)
	Count(ctx context.Context) (int, error)
	Clear(ctx context.Context) error
}
