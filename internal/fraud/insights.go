package fraud

import (
	"context"
	"math"

	"github.com/mbd888/fraudlens/internal/snapshot"
)

// Insight sources. The snapshot path is authoritative; the records path is a
// coarser approximation used when no snapshot has ever been written.
const (
	SourceSnapshot = "snapshot"
	SourceRecords  = "records"
)

const maxAlerts = 50

// Alert is one flagged transaction surfaced on the dashboard.
// Score is normalized to [0, 1].
type Alert struct {
	ID            int     `json:"id"`
	TransactionID string  `json:"transaction_id"`
	Type          string  `json:"type"`
	Score         float64 `json:"score"`
}

// Insights is the dashboard-ready read model over the latest upload.
type Insights struct {
	AnomaliesDetected int     `json:"anomalies_detected"`
	TotalTransactions int     `json:"total_transactions"`
	RiskLevel         string  `json:"risk_level"`
	Alerts            []Alert `json:"alerts"`
	Source            string  `json:"source"`
}

// Insights summarizes the latest upload. The snapshot path reads full score
// detail; without a snapshot it falls back to scanning persisted records and
// deriving approximate alert scores from amount magnitude. The two paths are
// intentionally different algorithms and are never mixed.
func (s *Service) Insights(ctx context.Context) (*Insights, error) {
	if snap, err := s.snaps.Read(ctx); err == nil {
		return insightsFromSnapshot(snap), nil
	}

	records, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	return insightsFromRecords(records), nil
}

func insightsFromSnapshot(snap *snapshot.Snapshot) *Insights {
	out := &Insights{
		TotalTransactions: snap.Summary.TotalTransactions,
		Alerts:            []Alert{},
		Source:            SourceSnapshot,
	}

	for _, tx := range snap.Transactions {
		if !tx.IsFraud {
			continue
		}
		out.AnomaliesDetected++
		if len(out.Alerts) < maxAlerts {
			out.Alerts = append(out.Alerts, Alert{
				ID:            len(out.Alerts),
				TransactionID: tx.TransactionID,
				Type:          string(tx.RiskLabel) + " transaction",
				Score:         float64(tx.RiskScore) / 100,
			})
		}
	}

	out.RiskLevel = riskLevel(out.AnomaliesDetected, out.TotalTransactions)
	return out
}

// insightsFromRecords is the degraded path: persisted records carry no score
// detail, so alert scores are a rough function of amount, clamped into
// [0.3, 1.0].
func insightsFromRecords(records []Record) *Insights {
	out := &Insights{
		TotalTransactions: len(records),
		Alerts:            []Alert{},
		Source:            SourceRecords,
	}

	for _, r := range records {
		if !r.IsFraud {
			continue
		}
		out.AnomaliesDetected++
		if len(out.Alerts) < maxAlerts {
			score := float64(r.Amount) / 10000
			if score < 0.3 {
				score = 0.3
			}
			if score > 1.0 {
				score = 1.0
			}
			out.Alerts = append(out.Alerts, Alert{
				ID:            len(out.Alerts),
				TransactionID: r.TransactionID,
				Type:          "Unusual amount",
				Score:         math.Round(score*100) / 100,
			})
		}
	}

	out.RiskLevel = riskLevel(out.AnomaliesDetected, out.TotalTransactions)
	return out
}

func riskLevel(flagged, total int) string {
	if total == 0 {
		return "low"
	}
	pct := float64(flagged) / float64(total) * 100
	switch {
	case pct > 50:
		return "high"
	case pct > 20:
		return "medium"
	default:
		return "low"
	}
}
