package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeColumnsAliases(t *testing.T) {
	mapping := NormalizeColumns([]string{"txn_id", "amt", "date", "category", "age_days"})

	assert.Equal(t, "transaction_id", mapping["txn_id"])
	assert.Equal(t, "amount", mapping["amt"])
	assert.Equal(t, "timestamp", mapping["date"])
	assert.Equal(t, "merchant_category", mapping["category"])
	assert.Equal(t, "account_age_days", mapping["age_days"])
}

func TestNormalizeColumnsCaseAndWhitespace(t *testing.T) {
	mapping := NormalizeColumns([]string{" TXN_ID ", "Amount", "Created_At"})

	assert.Equal(t, "transaction_id", mapping[" TXN_ID "])
	assert.Equal(t, "amount", mapping["Amount"])
	assert.Equal(t, "timestamp", mapping["Created_At"])
}

func TestNormalizeColumnsFirstMatchWins(t *testing.T) {
	// Both "id" and "txn_id" alias transaction_id; only the first column in
	// original order is mapped.
	mapping := NormalizeColumns([]string{"id", "txn_id", "amount"})

	assert.Equal(t, "transaction_id", mapping["id"])
	assert.NotContains(t, mapping, "txn_id")
}

func TestNormalizeColumnsUnmatchedPassThrough(t *testing.T) {
	mapping := NormalizeColumns([]string{"amount", "notes", "branch_code"})

	assert.Equal(t, "amount", mapping["amount"])
	assert.NotContains(t, mapping, "notes")
	assert.NotContains(t, mapping, "branch_code")
	assert.Len(t, mapping, 1)
}

func TestParseTimestampFormats(t *testing.T) {
	ok := []string{
		"2024-01-15 02:30:00",
		"2024-01-15T02:30:00",
		"2024-01-15T02:30:00Z",
		"2024-01-15",
		"15/01/2024 02:30:00",
		"15/01/2024",
		"01/15/2024 02:30:00",
		"01/15/2024",
		"2024/01/15 02:30:00",
		"2024/01/15",
	}
	for _, s := range ok {
		ts, parsed := ParseTimestamp(s)
		assert.True(t, parsed, "should parse %q", s)
		assert.Equal(t, 2024, ts.Year(), "year for %q", s)
		assert.Equal(t, 15, ts.Day(), "day for %q", s)
	}

	for _, s := range []string{"", "yesterday", "2024-13-40", "15:04:05"} {
		_, parsed := ParseTimestamp(s)
		assert.False(t, parsed, "should not parse %q", s)
	}
}

func TestParseTimestampDayFirstPrecedence(t *testing.T) {
	// 03/04/2024 matches the day-first layout before the month-first one.
	ts, parsed := ParseTimestamp("03/04/2024")
	assert.True(t, parsed)
	assert.Equal(t, 3, ts.Day())
	assert.Equal(t, 4, int(ts.Month()))
}
