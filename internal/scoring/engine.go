package scoring

import (
	"strings"
	"time"
)

// highRiskCategories are merchant categories that always contribute the full
// merchant-risk weight.
var highRiskCategories = map[string]bool{
	"gambling":      true,
	"crypto":        true,
	"gift_cards":    true,
	"prepaid":       true,
	"wire_transfer": true,
}

const (
	// reportingThreshold is the fixed regulatory reporting level used by
	// structuring detection. Intentional fixed policy, not calibrated.
	reportingThreshold = 50000.0

	// velocityWindow is the ± interval for the velocity neighbour count.
	velocityWindow = 600 * time.Second

	// absoluteAmountLimit triggers the no-history amount check.
	absoluteAmountLimit = 50000.0
)

// Score computes the fraud risk of one transaction against a bounded window
// of prior transactions. Pure function: no clock reads, no stored state, and
// each factor fails closed to 0 on unparseable input instead of aborting.
func Score(tx Transaction, history []Transaction) Result {
	breakdown := map[string]int{
		"amount_anomaly": amountAnomalyFactor(tx, history),
		"velocity":       velocityFactor(tx, history),
		"merchant_risk":  merchantRiskFactor(tx),
		"time_anomaly":   timeAnomalyFactor(tx),
		"account_age":    accountAgeFactor(tx),
		"structuring":    structuringFactor(tx, history),
	}

	total := 0
	for _, v := range breakdown {
		total += v
	}
	if total > 100 {
		total = 100
	}
	if total < 0 {
		total = 0
	}

	return Result{
		RiskScore: total,
		RiskLabel: LabelFor(total),
		Breakdown: breakdown,
	}
}

// amountAnomalyFactor compares the amount against the trailing mean.
// The mean excludes the current transaction's amount; with a single history
// entry the full mean is used.
func amountAnomalyFactor(tx Transaction, history []Transaction) int {
	if len(history) == 0 {
		if tx.Amount > absoluteAmountLimit {
			return 15
		}
		return 0
	}

	var total float64
	for _, h := range history {
		total += h.Amount
	}
	mean := total
	if n := len(history); n > 1 {
		mean = (total - tx.Amount) / float64(n-1)
	}

	if mean <= 0 {
		if tx.Amount > absoluteAmountLimit {
			return 15
		}
		return 0
	}

	ratio := tx.Amount / mean
	switch {
	case ratio >= 3.0:
		return weightAmountAnomaly
	case ratio >= 2.0:
		return 15
	case ratio >= 1.5:
		return 8
	default:
		return 0
	}
}

// velocityFactor counts history entries within ±10 minutes of the
// transaction. Entries without a parseable timestamp are excluded.
func velocityFactor(tx Transaction, history []Transaction) int {
	if len(history) == 0 {
		return 0
	}
	txTime, ok := ParseTimestamp(tx.Timestamp)
	if !ok {
		return 0
	}

	count := 0
	for _, h := range history {
		ht, ok := ParseTimestamp(h.Timestamp)
		if !ok {
			continue
		}
		d := txTime.Sub(ht)
		if d < 0 {
			d = -d
		}
		if d <= velocityWindow {
			count++
		}
	}

	switch {
	case count >= 5:
		return weightVelocity
	case count >= 3:
		return 10
	default:
		return 0
	}
}

func merchantRiskFactor(tx Transaction) int {
	category := strings.ToLower(strings.TrimSpace(tx.MerchantCategory))
	category = strings.ReplaceAll(category, " ", "_")
	category = strings.ReplaceAll(category, "-", "_")
	if highRiskCategories[category] {
		return weightMerchantRisk
	}
	return 0
}

// timeAnomalyFactor flags transactions in the 00:00–04:59 window.
func timeAnomalyFactor(tx Transaction) int {
	txTime, ok := ParseTimestamp(tx.Timestamp)
	if !ok {
		return 0
	}
	if h := txTime.Hour(); h >= 0 && h < 5 {
		return weightTimeAnomaly
	}
	return 0
}

func accountAgeFactor(tx Transaction) int {
	if tx.AccountAgeDays == nil {
		return 0
	}
	age := *tx.AccountAgeDays
	switch {
	case age < 7 && tx.Amount > 20000:
		return weightAccountAge
	case age < 30 && tx.Amount > absoluteAmountLimit:
		return 10
	default:
		return 0
	}
}

// structuringFactor flags amounts parked just under the reporting threshold
// when the history holds at least 3 similar amounts.
func structuringFactor(tx Transaction, history []Transaction) int {
	if len(history) == 0 {
		return 0
	}

	nearThreshold := tx.Amount >= reportingThreshold*0.95 && tx.Amount <= reportingThreshold*1.05
	if !nearThreshold {
		return 0
	}

	bandLow := tx.Amount * 0.95
	bandHigh := tx.Amount * 1.05
	similar := 0
	for _, h := range history {
		if h.Amount >= bandLow && h.Amount <= bandHigh {
			similar++
		}
	}
	if similar >= 3 {
		return weightStructuring
	}
	return 0
}
