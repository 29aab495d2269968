package fraud

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mbd888/fraudlens/internal/scoring"
	"github.com/mbd888/fraudlens/internal/snapshot"
	"github.com/mbd888/fraudlens/internal/traces"
	"go.opentelemetry.io/otel/attribute"
)

// labelColors are the fixed chart colors per risk label.
var labelColors = map[scoring.Label]string{
	scoring.LabelSafe:       "#22c55e",
	scoring.LabelSuspicious: "#f59e0b",
	scoring.LabelHighRisk:   "#ef4444",
}

// EventPublisher receives ingestion events for live dashboard streaming.
// Implementations must not block; publishing is fire-and-forget.
type EventPublisher interface {
	UploadCompleted(summary snapshot.Summary, version int64)
	HighRiskTransaction(tx snapshot.ScoredTransaction)
}

// Service orchestrates CSV ingestion, scoring, and the derived read models.
type Service struct {
	store  Store
	snaps  snapshot.Store
	events EventPublisher
	logger *slog.Logger
}

// NewService creates the fraud service. events may be nil.
func NewService(store Store, snaps snapshot.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, snaps: snaps, logger: logger}
}

// WithEvents attaches an ingestion event publisher.
func (s *Service) WithEvents(p EventPublisher) *Service {
	s.events = p
	return s
}

// Ingest runs one CSV batch through the full pipeline and returns the
// snapshot payload. The fraud record table is replaced atomically; the
// snapshot write is best-effort and never fails the upload.
//
// Uploads are not coordinated with each other: two concurrent uploads
// interleave their writes and the last one wins both stores.
func (s *Service) Ingest(ctx context.Context, filename string, r io.Reader) (*snapshot.Snapshot, error) {
	ctx, span := traces.StartSpan(ctx, "fraud.ingest", traces.Filename(filename))
	defer span.End()

	start := time.Now()

	if !strings.HasSuffix(strings.ToLower(filename), ".csv") {
		uploadsTotal.WithLabelValues("rejected").Inc()
		return nil, fmt.Errorf("%w: got %q", ErrNotCSV, filename)
	}

	header, rows, err := readCSV(r)
	if err != nil {
		uploadsTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}

	mapping := scoring.NormalizeColumns(header)
	if !hasCanonical(mapping, scoring.ColAmount) {
		uploadsTotal.WithLabelValues("rejected").Inc()
		return nil, fmt.Errorf("%w: accepted names are %s",
			ErrMissingAmountColumn, strings.Join(scoring.AmountAliases(), ", "))
	}

	scored := scoreRows(header, mapping, rows)
	span.SetAttributes(attribute.Int("fraud.rows", len(scored)))

	records := make([]Record, len(scored))
	for i, tx := range scored {
		records[i] = Record{
			TransactionID: tx.TransactionID,
			Amount:        int(tx.Amount),
			IsFraud:       tx.IsFraud,
		}
	}
	if err := s.store.ReplaceAll(ctx, records); err != nil {
		uploadsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to store fraud records: %w", err)
	}

	snap := buildSnapshot(scored)

	// Best-effort secondary write: a snapshot failure degrades the read
	// paths but never rolls back the ingestion.
	if err := s.snaps.Write(ctx, snap); err != nil {
		snapshotWritesTotal.WithLabelValues("error").Inc()
		s.logger.Warn("snapshot write failed, continuing", "error", err)
	} else {
		snapshotWritesTotal.WithLabelValues("ok").Inc()
		span.SetAttributes(traces.SnapshotVersion(snap.Version))
	}

	for _, tx := range scored {
		rowsScoredTotal.WithLabelValues(string(tx.RiskLabel)).Inc()
	}
	uploadsTotal.WithLabelValues("ok").Inc()
	uploadDuration.Observe(time.Since(start).Seconds())

	if s.events != nil {
		s.events.UploadCompleted(snap.Summary, snap.Version)
		for _, tx := range snap.Transactions {
			if tx.RiskLabel == scoring.LabelHighRisk {
				s.events.HighRiskTransaction(tx)
			}
		}
	}

	s.logger.Info("upload ingested",
		"rows", snap.Summary.TotalTransactions,
		"flagged", snap.Summary.FraudCount,
		"snapshot_version", snap.Version,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return snap, nil
}

// Status reports whether any records are persisted.
func (s *Service) Status(ctx context.Context) (hasData bool, rowCount int, err error) {
	n, err := s.store.Count(ctx)
	if err != nil {
		return false, 0, err
	}
	return n > 0, n, nil
}

// Clear drops all persisted fraud records. The snapshot keeps its last value
// until the next upload overwrites it.
func (s *Service) Clear(ctx context.Context) error {
	return s.store.Clear(ctx)
}

// Chart returns the chart payload from the snapshot, or a coarse
// flagged/normal distribution derived from records when no snapshot exists.
func (s *Service) Chart(ctx context.Context) (snapshot.ChartData, error) {
	if snap, err := s.snaps.Read(ctx); err == nil {
		return snap.ChartData, nil
	}

	records, err := s.store.List(ctx)
	if err != nil {
		return snapshot.ChartData{}, err
	}
	flagged := 0
	for _, r := range records {
		if r.IsFraud {
			flagged++
		}
	}
	return snapshot.ChartData{
		RiskDistribution: []snapshot.DistributionSlice{
			{Name: "Normal", Value: len(records) - flagged, Color: labelColors[scoring.LabelSafe]},
			{Name: "Flagged", Value: flagged, Color: labelColors[scoring.LabelHighRisk]},
		},
		TimelineSeries: []snapshot.TimelinePoint{},
	}, nil
}

// readCSV parses the upload into a header plus data rows. Ragged rows are
// tolerated; downstream conversion fills missing fields with defaults.
func readCSV(r io.Reader) (header []string, rows [][]string, err error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err = cr.Read()
	if err == io.EOF {
		return nil, nil, ErrEmptyFile
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformedCSV, err)
	}

	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrMalformedCSV, err)
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, nil, ErrEmptyFile
	}
	return header, rows, nil
}

func hasCanonical(mapping map[string]string, canonical string) bool {
	for _, c := range mapping {
		if c == canonical {
			return true
		}
	}
	return false
}

// scoreRows converts raw rows to canonical transactions and scores each one
// against the trailing window of prior rows in file order.
func scoreRows(header []string, mapping map[string]string, rows [][]string) []snapshot.ScoredTransaction {
	history := make([]scoring.Transaction, 0, len(rows))
	scored := make([]snapshot.ScoredTransaction, 0, len(rows))

	for _, row := range rows {
		tx := toTransaction(header, mapping, row)

		window := history
		if len(window) > scoring.HistoryWindow {
			window = window[len(window)-scoring.HistoryWindow:]
		}
		res := scoring.Score(tx, window)

		scored = append(scored, snapshot.ScoredTransaction{
			Transaction: tx,
			RiskScore:   res.RiskScore,
			RiskLabel:   res.RiskLabel,
			Breakdown:   res.Breakdown,
			IsFraud:     res.Flagged(),
		})
		history = append(history, tx)
	}
	return scored
}

// toTransaction builds a canonical transaction from one raw row. Amount is
// always set (0 on parse failure); when no column maps to transaction_id the
// first CSV column stands in for it.
func toTransaction(header []string, mapping map[string]string, row []string) scoring.Transaction {
	values := make(map[string]string, len(mapping))
	for i, col := range header {
		if i >= len(row) {
			break
		}
		if canonical, ok := mapping[col]; ok {
			values[canonical] = row[i]
		}
	}

	tx := scoring.Transaction{
		TransactionID:    strings.TrimSpace(values[scoring.ColTransactionID]),
		Timestamp:        strings.TrimSpace(values[scoring.ColTimestamp]),
		MerchantCategory: strings.TrimSpace(values[scoring.ColMerchantCategory]),
	}

	if tx.TransactionID == "" && len(row) > 0 {
		tx.TransactionID = strings.TrimSpace(row[0])
	}

	if v, err := strconv.ParseFloat(strings.TrimSpace(values[scoring.ColAmount]), 64); err == nil {
		tx.Amount = v
	}

	if raw := strings.TrimSpace(values[scoring.ColAccountAgeDays]); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			age := int(v)
			tx.AccountAgeDays = &age
		}
	}
	return tx
}

// buildSnapshot aggregates scored rows into the upload payload.
func buildSnapshot(scored []snapshot.ScoredTransaction) *snapshot.Snapshot {
	var sum snapshot.Summary
	var scoreTotal int
	timeline := make(map[string]*snapshot.TimelinePoint)

	for _, tx := range scored {
		sum.TotalTransactions++
		scoreTotal += tx.RiskScore
		switch tx.RiskLabel {
		case scoring.LabelSafe:
			sum.SafeCount++
		case scoring.LabelSuspicious:
			sum.SuspiciousCount++
		case scoring.LabelHighRisk:
			sum.HighRiskCount++
		}
		if tx.IsFraud {
			sum.FraudCount++
		} else {
			sum.NormalCount++
		}

		day := "Unknown"
		if ts, ok := scoring.ParseTimestamp(tx.Timestamp); ok {
			day = ts.Format("2006-01-02")
		}
		point, ok := timeline[day]
		if !ok {
			point = &snapshot.TimelinePoint{Date: day}
			timeline[day] = point
		}
		switch tx.RiskLabel {
		case scoring.LabelSafe:
			point.Safe++
		case scoring.LabelSuspicious:
			point.Suspicious++
		case scoring.LabelHighRisk:
			point.HighRisk++
		}
	}

	if sum.TotalTransactions > 0 {
		sum.AverageRiskScore = math.Round(float64(scoreTotal)/float64(sum.TotalTransactions)*100) / 100
		sum.FraudPercentage = math.Round(float64(sum.FraudCount)/float64(sum.TotalTransactions)*1000) / 10
	}

	days := make([]string, 0, len(timeline))
	for day := range timeline {
		days = append(days, day)
	}
	sort.Strings(days)

	series := make([]snapshot.TimelinePoint, 0, len(days))
	for _, day := range days {
		series = append(series, *timeline[day])
	}

	return &snapshot.Snapshot{
		Transactions: scored,
		Summary:      sum,
		ChartData: snapshot.ChartData{
			RiskDistribution: []snapshot.DistributionSlice{
				{Name: string(scoring.LabelSafe), Value: sum.SafeCount, Color: labelColors[scoring.LabelSafe]},
				{Name: string(scoring.LabelSuspicious), Value: sum.SuspiciousCount, Color: labelColors[scoring.LabelSuspicious]},
				{Name: string(scoring.LabelHighRisk), Value: sum.HighRiskCount, Color: labelColors[scoring.LabelHighRisk]},
			},
			TimelineSeries: series,
		},
	}
}
