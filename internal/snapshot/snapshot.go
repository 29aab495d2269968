// Package snapshot stores the full output of the most recent ingestion run.
//
// The snapshot is a single slot, overwritten wholesale on every successful
// upload. It carries a monotonic version and write timestamp so readers can
// observe staleness instead of guessing. There is no transactional link with
// the fraud record table: a reader racing a write sees the previous version.
package snapshot

import (
	"context"
	"errors"

	"github.com/mbd888/fraudlens/internal/scoring"
)

// ErrNoSnapshot is returned by Read when no snapshot has ever been written.
// Distinct from IO/decode failures so callers can tell "absent" from
// "degraded".
var ErrNoSnapshot = errors.New("no snapshot available")

// ScoredTransaction is a canonical transaction plus its scoring verdict.
type ScoredTransaction struct {
	scoring.Transaction
	RiskScore int            `json:"risk_score"`
	RiskLabel scoring.Label  `json:"risk_label"`
	Breakdown map[string]int `json:"breakdown"`
	IsFraud   bool           `json:"is_fraud"`
}

// Summary aggregates one upload.
type Summary struct {
	TotalTransactions int     `json:"total_transactions"`
	SafeCount         int     `json:"safe_count"`
	SuspiciousCount   int     `json:"suspicious_count"`
	HighRiskCount     int     `json:"high_risk_count"`
	AverageRiskScore  float64 `json:"average_risk_score"`
	FraudCount        int     `json:"fraud_count"`
	NormalCount       int     `json:"normal_count"`
	FraudPercentage   float64 `json:"fraud_percentage"`
}

// DistributionSlice is one pie slice of the risk distribution chart.
type DistributionSlice struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
	Color string `json:"color"`
}

// TimelinePoint holds per-label counts for one calendar day.
// Date is the date portion of the timestamp, or "Unknown" when absent.
type TimelinePoint struct {
	Date       string `json:"date"`
	Safe       int    `json:"safe"`
	Suspicious int    `json:"suspicious"`
	HighRisk   int    `json:"high_risk"`
}

// ChartData is the dashboard-ready chart payload for one upload.
type ChartData struct {
	RiskDistribution []DistributionSlice `json:"risk_distribution"`
	TimelineSeries   []TimelinePoint     `json:"timeline_series"`
}

// Snapshot is the complete output of one ingestion pass.
type Snapshot struct {
	Version      int64               `json:"version"`
	WrittenAt    string              `json:"written_at"`
	Transactions []ScoredTransaction `json:"transactions"`
	Summary      Summary             `json:"summary"`
	ChartData    ChartData           `json:"chart_data"`
}

// Store is the single-slot snapshot store. Write overwrites the whole slot
// and assigns the next version; Read returns the latest snapshot verbatim or
// ErrNoSnapshot. Implementations are last-write-wins with no locking across
// processes.
type Store interface {
	Write(ctx context.Context, snap *Snapshot) error
	Read(ctx context.Context) (*Snapshot, error)
}
