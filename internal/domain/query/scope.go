package query

import (
	"regexp"
	"strings"
)

var mutatingKeyword = regexp.MustCompile(`(?i)\b(drop|delete|update|insert|truncate|alter|grant|revoke)\b`)

// ReferencesTenantScope reports whether text uses the named tenant
// placeholder (":" + param) as a bind parameter. This is the single check
// deciding whether a synthesized query may run. Occurrences inside string
// literals, quoted identifiers or comments are never bound and do not count.
func ReferencesTenantScope(text, param string) bool {
	if param == "" {
		return false
	}
	text = maskLiterals(text)
	placeholder := ":" + param
	for offset := 0; ; {
		idx := strings.Index(text[offset:], placeholder)
		if idx < 0 {
			return false
		}
		start := offset + idx
		end := start + len(placeholder)
		offset = end
		if start > 0 && text[start-1] == ':' {
			continue
		}
		if end < len(text) && isWordByte(text[end]) {
			continue
		}
		return true
	}
}

// DetectMutation returns the first data-modifying keyword in text outside
// string literals and comments.
func DetectMutation(text string) (string, bool) {
	match := mutatingKeyword.FindString(maskLiterals(text))
	if match == "" {
		return "", false
	}
	return strings.ToUpper(match), true
}

func isWordByte(b byte) bool {
	return b == '_' || (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
