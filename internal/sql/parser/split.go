package parser

import "strings"

// Split cuts src into ';'-terminated statements, ignoring ';' inside single
// quotes. The returned rest is the trailing text with no terminator yet.
func Split(src string) (stmts []string, rest string) {
	inQuote := false
	start := 0
	for i, r := range src {
		switch {
		case r == '\'':
			inQuote = !inQuote
		case r == ';' && !inQuote:
			if stmt := strings.TrimSpace(src[start : i+1]); stmt != ";" {
				stmts = append(stmts, stmt)
			}
			start = i + 1
		}
	}
	return stmts, strings.TrimSpace(src[start:])
}

// Complete reports whether buf holds at least one terminated statement.
func Complete(buf string) bool {
	stmts, _ := Split(buf)
	return len(stmts) > 0
}
