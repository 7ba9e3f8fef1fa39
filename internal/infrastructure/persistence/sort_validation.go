package persistence

import "strings"

// AnalysisSortFields whitelists the columns list queries may order by.
// Anything else falls back to created_at, so caller-supplied sort
// parameters can never be spliced into SQL.
var AnalysisSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"overall_score": true,
	"attempts":      true,
	"source":        true,
	"model":         true,
}

// ValidateSortOrder normalizes a direction to ASC or DESC, defaulting
// to DESC for anything unrecognized.
func ValidateSortOrder(orderDir string) string {
	if strings.EqualFold(strings.TrimSpace(orderDir), "asc") {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField returns sortField when whitelisted, otherwise
// defaultField.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}
