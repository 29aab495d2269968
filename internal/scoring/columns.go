package scoring

import "strings"

// Canonical column names recognised by the ingestion pipeline.
const (
	ColTransactionID    = "transaction_id"
	ColAmount           = "amount"
	ColTimestamp        = "timestamp"
	ColMerchantCategory = "merchant_category"
	ColAccountAgeDays   = "account_age_days"
)

// columnAliases maps each canonical field to its accepted aliases.
// Matching is case-insensitive after trimming.
var columnAliases = map[string][]string{
	ColTransactionID:    {"txn_id", "tx_id", "id", "transaction", "txid", "tid"},
	ColAmount:           {"amt", "value", "total", "price", "sum"},
	ColTimestamp:        {"date", "datetime", "time", "created_at", "ts", "date_time", "transaction_date"},
	ColMerchantCategory: {"category", "merchant", "vendor", "type", "merchant_type", "cat"},
	ColAccountAgeDays:   {"account_age", "age_days", "account_days", "age", "days_since_opening"},
}

// canonicalOrder fixes the iteration order so alias resolution is
// deterministic across runs.
var canonicalOrder = []string{
	ColTransactionID,
	ColAmount,
	ColTimestamp,
	ColMerchantCategory,
	ColAccountAgeDays,
}

// AmountAliases lists the accepted names for the required amount column,
// canonical name first. Used in schema error messages.
func AmountAliases() []string {
	return append([]string{ColAmount}, columnAliases[ColAmount]...)
}

// NormalizeColumns maps raw CSV column names to canonical field names.
// Only matched columns appear in the result; unmatched columns pass through
// downstream untouched. When several raw columns could claim the same
// canonical field, the first one in original column order wins.
func NormalizeColumns(columns []string) map[string]string {
	lowered := make([]string, len(columns))
	for i, c := range columns {
		lowered[i] = strings.ToLower(strings.TrimSpace(c))
	}

	mapping := make(map[string]string)
	for _, canonical := range canonicalOrder {
		aliases := columnAliases[canonical]
		for i, lower := range lowered {
			if lower == canonical || contains(aliases, lower) {
				mapping[columns[i]] = canonical
				break
			}
		}
	}
	return mapping
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
