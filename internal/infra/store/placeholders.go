package store

import (
	"fmt"
	"strings"
)

// bindPositional rewrites :name placeholders into $n positional arguments.
// Casts (::type), quoted strings, quoted identifiers and comments are left
// untouched.
// A placeholder repeated in the text reuses its position.
func bindPositional(text string, params map[string]any) (string, []any, error) {
	var (
		out       = make([]byte, 0, len(text)+8)
		args      []any
		positions = map[string]int{}
	)
	for i := 0; i < len(text); i++ {
		ch := text[i]
		switch {
		case ch == '\'' || ch == '"':
			end := closingQuote(text, i)
			out = append(out, text[i:end]...)
			i = end - 1
		case ch == '-' && i+1 < len(text) && text[i+1] == '-':
			end := strings.IndexByte(text[i:], '\n')
			if end < 0 {
				end = len(text)
			} else {
				end += i
			}
			out = append(out, text[i:end]...)
			i = end - 1
		case ch == '/' && i+1 < len(text) && text[i+1] == '*':
			end := strings.Index(text[i+2:], "*/")
			if end < 0 {
				end = len(text)
			} else {
				end += i + 4
			}
			out = append(out, text[i:end]...)
			i = end - 1
		case ch == ':' && i+1 < len(text) && text[i+1] == ':':
			out = append(out, "::"...)
			i++
		case ch == ':' && i+1 < len(text) && isNameStart(text[i+1]):
			j := i + 1
			for j < len(text) && isNameByte(text[j]) {
				j++
			}
			name := text[i+1 : j]
			pos, seen := positions[name]
			if !seen {
				value, ok := params[name]
				if !ok {
					return "", nil, fmt.Errorf("no value bound for parameter :%s", name)
				}
				args = append(args, value)
				pos = len(args)
				positions[name] = pos
			}
			out = append(out, fmt.Sprintf("$%d", pos)...)
			i = j - 1
		default:
			out = append(out, ch)
		}
	}
	return string(out), args, nil
}

// closingQuote returns the index just past the quoted run starting at start.
// Doubled quotes inside the run are escapes.
func closingQuote(text string, start int) int {
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

func isNameStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isNameByte(b byte) bool {
	return isNameStart(b) || (b >= '0' && b <= '9')
}
