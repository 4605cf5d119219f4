package query

// maskLiterals returns text with string literals, quoted identifiers and
// comments replaced by spaces. Byte offsets are preserved, so a match found
// in the mask can be applied to the original text. An unterminated literal or
// block comment masks the rest of the text.
func maskLiterals(text string) string {
	out := []byte(text)
	blank := func(from, to int) {
		for k := from; k < to; k++ {
			if out[k] != '\n' {
				out[k] = ' '
			}
		}
	}
	for i := 0; i < len(text); {
		switch {
		case text[i] == '\'' || text[i] == '"':
			end := quotedEnd(text, i)
			blank(i, end)
			i = end
		case text[i] == '-' && i+1 < len(text) && text[i+1] == '-':
			end := i + 2
			for end < len(text) && text[end] != '\n' {
				end++
			}
			blank(i, end)
			i = end
		case text[i] == '/' && i+1 < len(text) && text[i+1] == '*':
			end := len(text)
			for k := i + 2; k+1 < len(text); k++ {
				if text[k] == '*' && text[k+1] == '/' {
					end = k + 2
					break
				}
			}
			blank(i, end)
			i = end
		default:
			i++
		}
	}
	return string(out)
}

// quotedEnd returns the index just past the quoted run opened at start.
// A doubled quote inside the run is an escape.
func quotedEnd(text string, start int) int {
	quote := text[start]
	for i := start + 1; i < len(text); i++ {
		if text[i] != quote {
			continue
		}
		if i+1 < len(text) && text[i+1] == quote {
			i++
			continue
		}
		return i + 1
	}
	return len(text)
}
