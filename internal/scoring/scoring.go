// Package scoring implements deterministic fraud-risk scoring for financial
// transactions.
//
// Every transaction is evaluated against 6 weighted factors: amount anomaly,
// velocity, merchant risk, time-of-day, account age, and structuring. Scores
// range from 0 (safe) to 100 (high risk) and are fully reproducible: the same
// transaction scored against the same history always yields the same result.
package scoring

// Label is the risk banding assigned to a scored transaction.
type Label string

const (
	LabelSafe       Label = "Safe"
	LabelSuspicious Label = "Suspicious"
	LabelHighRisk   Label = "High Risk"
)

// Score thresholds for label assignment.
const (
	SuspiciousThreshold = 30
	HighRiskThreshold   = 70
)

// Factor weights. The sum of all factors is clamped to [0, 100].
const (
	weightAmountAnomaly = 25
	weightVelocity      = 20
	weightMerchantRisk  = 15
	weightTimeAnomaly   = 10
	weightAccountAge    = 15
	weightStructuring   = 15
)

// HistoryWindow bounds how many prior transactions the engine compares
// against. Keeps per-row cost O(window) instead of O(n²) over a large file.
const HistoryWindow = 200

// Transaction is a canonical transaction record after column-alias
// resolution. Amount is always set (0 on parse failure); every other field
// is optional and zero-valued when absent.
type Transaction struct {
	TransactionID    string  `json:"transaction_id"`
	Amount           float64 `json:"amount"`
	Timestamp        string  `json:"timestamp,omitempty"`
	MerchantCategory string  `json:"merchant_category,omitempty"`
	AccountAgeDays   *int    `json:"account_age_days,omitempty"`
}

// Result is the engine's verdict on a single transaction.
// RiskScore is always clamp(sum(Breakdown), 0, 100) and RiskLabel is a pure
// function of RiskScore.
type Result struct {
	RiskScore int            `json:"risk_score"`
	RiskLabel Label          `json:"risk_label"`
	Breakdown map[string]int `json:"breakdown"`
}

// Flagged reports whether the label marks the transaction as fraud.
func (r Result) Flagged() bool {
	return r.RiskLabel != LabelSafe
}

// LabelFor bands a clamped risk score into a label.
func LabelFor(score int) Label {
	switch {
	case score < SuspiciousThreshold:
		return LabelSafe
	case score < HighRiskThreshold:
		return LabelSuspicious
	default:
		return LabelHighRisk
	}
}
