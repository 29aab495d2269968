package fraud

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/mbd888/fraudlens/internal/traces"
)

// Explanation thresholds. These justify a classification after the fact;
// they are deliberately independent of the scoring engine's factors.
const (
	severeAmountMultiplier = 3.0
	highAmountMultiplier   = 2.0
	mildAmountMultiplier   = 1.2
	businessHoursStart     = 8
	businessHoursEnd       = 20
	structuringLevel       = 50000
)

// Point is a single human-readable justification.
type Point struct {
	Icon   string `json:"icon"`
	Label  string `json:"label"`
	Detail string `json:"detail"`
}

// Explanation is the full explain payload for one transaction id.
// Found is false when the id has no persisted record; Points is never empty
// when Found is true.
type Explanation struct {
	Found         bool    `json:"found"`
	TransactionID string  `json:"transaction_id"`
	Amount        int     `json:"amount,omitempty"`
	IsFraud       bool    `json:"is_fraud,omitempty"`
	Points        []Point `json:"points"`
}

// Explain derives justification for one transaction's classification from
// the persisted records alone — it never re-runs the scoring engine, so the
// explanation works even though the stored form dropped all score detail.
func (s *Service) Explain(ctx context.Context, transactionID string) (*Explanation, error) {
	ctx, span := traces.StartSpan(ctx, "fraud.explain", traces.TransactionID(transactionID))
	defer span.End()

	record, err := s.store.Get(ctx, transactionID)
	if errors.Is(err, ErrRecordNotFound) {
		return &Explanation{Found: false, TransactionID: transactionID, Points: []Point{}}, nil
	}
	if err != nil {
		return nil, err
	}

	records, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	amounts := make([]int, 0, len(records))
	for _, r := range records {
		amounts = append(amounts, r.Amount)
	}
	sort.Ints(amounts)

	var mean float64
	if len(amounts) > 0 {
		total := 0
		for _, a := range amounts {
			total += a
		}
		mean = float64(total) / float64(len(amounts))
	}
	p75 := nearestRank(amounts, 0.75)
	p90 := nearestRank(amounts, 0.90)

	points := []Point{}

	// Amount vs dataset mean, tiered by ratio.
	if mean > 0 {
		ratio := float64(record.Amount) / mean
		switch {
		case ratio >= severeAmountMultiplier:
			points = append(points, Point{
				Icon:  "amount",
				Label: "Severe Amount Anomaly",
				Detail: fmt.Sprintf(
					"This transaction ($%s) is about %.1fx higher than the typical transaction in this dataset (avg ~$%s). Such an outlier is a strong fraud signal.",
					commas(record.Amount), ratio, commas(int(math.Round(mean)))),
			})
		case ratio >= highAmountMultiplier:
			points = append(points, Point{
				Icon:  "amount",
				Label: "Unusually High Amount",
				Detail: fmt.Sprintf(
					"Transaction amount ($%s) is roughly %.1fx the dataset average ($%s), which is higher than normal spending patterns.",
					commas(record.Amount), ratio, commas(int(math.Round(mean)))),
			})
		case ratio >= mildAmountMultiplier:
			points = append(points, Point{
				Icon:  "amount",
				Label: "Above Typical Spend",
				Detail: fmt.Sprintf(
					"Transaction amount ($%s) is modestly above the dataset average (%.1fx higher). In combination with other signals, it contributes to the overall risk score.",
					commas(record.Amount), ratio),
			})
		case record.IsFraud:
			points = append(points, Point{
				Icon:  "amount",
				Label: "Amount Within Normal Band",
				Detail: fmt.Sprintf(
					"Transaction amount ($%s) is close to the dataset average ($%s). The flag is driven more by pattern-based signals than by raw value.",
					commas(record.Amount), commas(int(math.Round(mean)))),
			})
		}
	}

	// Percentile position relative to peers.
	if p90 > 0 && record.Amount >= p90 {
		points = append(points, Point{
			Icon:  "amount",
			Label: "Top-Value Transaction",
			Detail: fmt.Sprintf(
				"This payment ($%s) sits in roughly the top 10%% of all transactions by value in this dataset, which increases its risk weight.",
				commas(record.Amount)),
		})
	} else if p75 > 0 && record.Amount >= p75 && record.IsFraud {
		points = append(points, Point{
			Icon:  "amount",
			Label: "High Relative to Peers",
			Detail: fmt.Sprintf(
				"The amount ($%s) is higher than at least ~75%% of transactions in this upload, making it more suspicious than typical activity.",
				commas(record.Amount)),
		})
	}

	// Repeated amounts parked near the reporting threshold.
	if nearReportingLevel(record.Amount) && similarFlagged(records, record) >= 2 {
		points = append(points, Point{
			Icon:  "duplicate",
			Label: "Structured Amount Pattern",
			Detail: fmt.Sprintf(
				"The amount $%s sits near a common reporting threshold and appears multiple times across other flagged transactions. This repetition near the same level is consistent with structuring behaviour.",
				commas(record.Amount)),
		})
	}

	// Pseudo-vendor novelty from the id prefix.
	if prefix := vendorPrefix(transactionID); vendorCount(records, prefix) == 1 {
		points = append(points, Point{
			Icon:  "vendor",
			Label: "New or Unrecognised Counterparty",
			Detail: fmt.Sprintf(
				"A pseudo-vendor code derived from the transaction ID %q appears only once across all records, which indicates no prior history with this counterparty in the current dataset.",
				prefix),
		})
	}

	// Pseudo time-of-day derived from the id's numeric suffix.
	if hour, ok := pseudoHour(transactionID); ok && (hour < businessHoursStart || hour >= businessHoursEnd) {
		points = append(points, Point{
			Icon:  "hours",
			Label: "Outside Business Hours",
			Detail: fmt.Sprintf(
				"A proxy transaction time (~%02d:00 derived from the ID) falls outside standard business hours (%02d:00-%02d:00), which typically carries higher risk.",
				hour, businessHoursStart, businessHoursEnd),
		})
	}

	// Every lookup returns at least one point.
	if len(points) == 0 {
		if record.IsFraud {
			points = append(points, Point{
				Icon:   "model",
				Label:  "Flagged by Detection Rules",
				Detail: "This transaction crossed the Suspicious / High Risk threshold in the scoring model based on its combination of amount and dataset context, even though no single factor stands out on its own.",
			})
		} else {
			points = append(points, Point{
				Icon:   "model",
				Label:  "Below Fraud Thresholds",
				Detail: "This transaction remained under the risk thresholds when compared with the rest of the dataset, so it is not flagged.",
			})
		}
	}

	return &Explanation{
		Found:         true,
		TransactionID: record.TransactionID,
		Amount:        record.Amount,
		IsFraud:       record.IsFraud,
		Points:        points,
	}, nil
}

// nearestRank returns the nearest-rank percentile of sorted amounts:
// index round(p * (n-1)), clamped to the valid range.
func nearestRank(sorted []int, p float64) int {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Round(p * float64(len(sorted)-1)))
	if idx < 0 {
		idx = 0
	}
	if idx > len(sorted)-1 {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func nearReportingLevel(amount int) bool {
	diff := amount - structuringLevel
	if diff < 0 {
		diff = -diff
	}
	return diff <= structuringLevel*5/100
}

// similarFlagged counts other flagged records with an amount within ±5% of
// the record's amount.
func similarFlagged(records []Record, record *Record) int {
	bandLow := int(float64(record.Amount) * 0.95)
	bandHigh := int(float64(record.Amount) * 1.05)
	count := 0
	for _, r := range records {
		if r.TransactionID == record.TransactionID || !r.IsFraud {
			continue
		}
		if r.Amount >= bandLow && r.Amount <= bandHigh {
			count++
		}
	}
	return count
}

func vendorPrefix(transactionID string) string {
	if len(transactionID) >= 4 {
		return transactionID[:4]
	}
	return transactionID
}

func vendorCount(records []Record, prefix string) int {
	count := 0
	for _, r := range records {
		if strings.HasPrefix(r.TransactionID, prefix) {
			count++
		}
	}
	return count
}

// pseudoHour derives a deterministic hour from the last two digits of the
// id's numeric characters, modulo 24. ok is false when the id has no digits.
func pseudoHour(transactionID string) (int, bool) {
	digits := make([]byte, 0, len(transactionID))
	for i := 0; i < len(transactionID); i++ {
		if c := transactionID[i]; c >= '0' && c <= '9' {
			digits = append(digits, c)
		}
	}
	if len(digits) == 0 {
		return 0, false
	}
	if len(digits) > 2 {
		digits = digits[len(digits)-2:]
	}
	n := 0
	for _, c := range digits {
		n = n*10 + int(c-'0')
	}
	return n % 24, true
}

// commas formats an integer with thousands separators for display.
func commas(n int) string {
	s := fmt.Sprintf("%d", n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
