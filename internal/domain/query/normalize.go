package query

import (
	"regexp"
	"strings"
)

var (
	toVectorCall   = regexp.MustCompile(`(?i)\bto_vector\s*\(\s*:(\w+)\s*\)`)
	descEmbedding  = regexp.MustCompile(`(?i)\bdescription_embedding\b`)
	bareEmbedding  = regexp.MustCompile(`(?i)\bembedding\b`)
	sharedTable    = regexp.MustCompile(`(?i)\binvoice_embeddings\b`)
	paramCast      = regexp.MustCompile(`(?i)(^|[^:\w'\[])'?\[?:(\w+)\]?'?(?:\s*::\s*vector\b)+`)
	repeatedCast   = regexp.MustCompile(`(?i)(?:\s*::\s*vector\b){2,}`)
	aliasKeyword   = regexp.MustCompile(`(?i)(?:^|\W)AS\s+$`)
	canonicalCast  = "${1}'[:${2}]'::vector"
	singleCastText = "::vector"
)

// Normalize rewrites the vector-related spellings a synthesizer tends to
// produce into the one form the store accepts. Applying it twice is the same
// as applying it once.
//
// Parameter spellings are canonicalized before column casts are added so the
// quotes introduced by the canonical form are in place when literals are
// masked; the two rewrites touch disjoint tokens.
func Normalize(text string) string {
	out := toVectorCall.ReplaceAllString(text, "'[:${1}]'::vector")
	out = paramCast.ReplaceAllString(out, canonicalCast)
	out = castColumn(out, descEmbedding)
	if sharedTable.MatchString(out) {
		out = castColumn(out, bareEmbedding)
	}
	out = repeatedCast.ReplaceAllString(out, singleCastText)
	return out
}

// castColumn appends ::vector to every reference of column that is not
// already cast, called, a parameter, an alias or inside a literal or comment.
func castColumn(text string, column *regexp.Regexp) string {
	masked := maskLiterals(text)
	locs := column.FindAllStringIndex(masked, -1)
	if len(locs) == 0 {
		return text
	}
	var b strings.Builder
	b.Grow(len(text) + len(locs)*len(singleCastText))
	last := 0
	for _, loc := range locs {
		start, end := loc[0], loc[1]
		b.WriteString(text[last:end])
		last = end
		if start > 0 && text[start-1] == ':' {
			continue
		}
		if aliasKeyword.MatchString(masked[:start]) {
			continue
		}
		rest := strings.TrimLeft(text[end:], " \t\r\n")
		if strings.HasPrefix(rest, "::") || strings.HasPrefix(rest, "(") {
			continue
		}
		b.WriteString(singleCastText)
	}
	b.WriteString(text[last:])
	return b.String()
}
