package query

import (
	"math"
	"strings"
)

// Sanitize strips vector columns from every row, rounds similarity-like
// values to three decimals and caps the result at maxRows (0 means no cap).
func Sanitize(rows []Row, maxRows int) []Row {
	if maxRows > 0 && len(rows) > maxRows {
		rows = rows[:maxRows]
	}
	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		clean := make(Row, len(row))
		for key, value := range row {
			if isVectorColumn(key) {
				continue
			}
			if isSimilarityColumn(key) {
				value = roundSimilarity(value)
			}
			clean[key] = value
		}
		out = append(out, clean)
	}
	return out
}

func isVectorColumn(name string) bool {
	lower := strings.ToLower(name)
	return lower == "embedding" || lower == "vector" ||
		strings.HasSuffix(lower, "_embedding") || strings.HasSuffix(lower, "_vector")
}

func isSimilarityColumn(name string) bool {
	lower := strings.ToLower(name)
	return lower == "similarity" || lower == "similarity_score" ||
		strings.HasSuffix(lower, "_similarity") || lower == "distance" || strings.HasSuffix(lower, "_distance")
}

func roundSimilarity(value any) any {
	switch v := value.(type) {
	case float64:
		return round3(v)
	case float32:
		return round3(float64(v))
	default:
		return value
	}
}

func round3(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return math.Round(v*1000) / 1000
}
