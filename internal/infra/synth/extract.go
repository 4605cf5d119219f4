package synth

import (
	"regexp"
	"strings"
)

var (
	sqlFence       = regexp.MustCompile("(?is)```sql\\s*(.*?)```")
	anyFence       = regexp.MustCompile("(?s)```\\s*(.*?)```")
	bareStatement  = regexp.MustCompile(`(?ims)^\s*(?:SELECT\s|WITH\s+(?:RECURSIVE\s+)?\w+(?:\s*\([^)]*\))?\s+AS\s*\().*?(?:;|\z)`)
	lineComment    = regexp.MustCompile(`--[^\n]*`)
	blockComment   = regexp.MustCompile(`(?s)/\*.*?\*/`)
	whitespaceRuns = regexp.MustCompile(`\s+`)
	questionWord   = regexp.MustCompile(`[\p{L}\p{N}_]+`)
)

// ExtractSQL pulls the first statement out of a model response. Fenced sql
// blocks win over plain fences, which win over a bare statement. A bare
// statement must start a line with SELECT or a WITH ... AS ( clause.
func ExtractSQL(content string) (string, bool) {
	var candidate string
	switch {
	case sqlFence.MatchString(content):
		candidate = sqlFence.FindStringSubmatch(content)[1]
	case anyFence.MatchString(content):
		candidate = anyFence.FindStringSubmatch(content)[1]
	default:
		candidate = bareStatement.FindString(content)
	}
	sql := cleanSQL(candidate)
	return sql, sql != ""
}

// cleanSQL drops comments, collapses whitespace and keeps the first statement.
func cleanSQL(sql string) string {
	sql = blockComment.ReplaceAllString(sql, " ")
	sql = lineComment.ReplaceAllString(sql, " ")
	sql = whitespaceRuns.ReplaceAllString(sql, " ")
	sql = firstStatement(sql)
	return strings.TrimSpace(sql)
}

func firstStatement(sql string) string {
	inQuote := false
	for i := 0; i < len(sql); i++ {
		switch sql[i] {
		case '\'':
			inQuote = !inQuote
		case ';':
			if !inQuote {
				return sql[:i]
			}
		}
	}
	return sql
}

// Confidence scores how plausible sql is as an answer to question.
func Confidence(sql, question string) float64 {
	score := 0.7
	upper := strings.ToUpper(sql)
	if (strings.HasPrefix(upper, "SELECT") || strings.HasPrefix(upper, "WITH")) && strings.Contains(upper, " FROM ") {
		score += 0.1
	}
	if strings.Contains(upper, " WHERE ") {
		score += 0.05
	}
	if strings.Contains(upper, " JOIN ") {
		score += 0.05
	}
	lower := strings.ToLower(sql)
	seen := map[string]struct{}{}
	for _, term := range questionWord.FindAllString(strings.ToLower(question), -1) {
		if len(term) <= 3 {
			continue
		}
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}
		if strings.Contains(lower, term) {
			score += 0.02
		}
	}
	if len(sql) < 20 {
		score -= 0.1
	}
	if len(sql) > 2000 {
		score -= 0.1
	}
	switch {
	case score < 0:
		return 0
	case score > 1:
		return 1
	default:
		return score
	}
}
