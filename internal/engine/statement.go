package engine

import (
	"errors"
	"strings"
)

// ErrMultipleStatements rejects input that holds more than one statement.
var ErrMultipleStatements = errors.New("only one SQL statement can run at a time")

// singleStatement returns query without its terminating semicolon. Any
// statement after the first top-level ';' is an error. Semicolons inside
// string literals, quoted identifiers and comments do not count.
func singleStatement(query string) (string, error) {
	end := statementEnd(query)
	if end < 0 {
		return query, nil
	}
	if strings.TrimSpace(stripComments(query[end+1:])) != "" {
		return "", ErrMultipleStatements
	}
	return query[:end], nil
}

// statementEnd is the byte offset of the first top-level ';', or -1.
func statementEnd(query string) int {
	for i := 0; i < len(query); i++ {
		switch c := query[i]; c {
		case '\'', '"', '`':
			i = skipQuoted(query, i, c)
		case '[':
			i = skipQuoted(query, i, ']')
		case '-':
			if strings.HasPrefix(query[i:], "--") {
				i = skipLineComment(query, i)
			}
		case '/':
			if strings.HasPrefix(query[i:], "/*") {
				i = skipBlockComment(query, i)
			}
		case ';':
			return i
		}
	}
	return -1
}

// skipQuoted returns the offset of the closing quote of the literal opened
// at start. A doubled quote is an escaped one.
func skipQuoted(query string, start int, closing byte) int {
	for i := start + 1; i < len(query); i++ {
		if query[i] != closing {
			continue
		}
		if closing != ']' && i+1 < len(query) && query[i+1] == closing {
			i++
			continue
		}
		return i
	}
	return len(query)
}

func skipLineComment(query string, start int) int {
	if nl := strings.IndexByte(query[start:], '\n'); nl >= 0 {
		return start + nl
	}
	return len(query)
}

func skipBlockComment(query string, start int) int {
	if end := strings.Index(query[start+2:], "*/"); end >= 0 {
		return start + 2 + end + 1
	}
	return len(query)
}

// stripComments drops comments and empty statements from a statement tail.
func stripComments(tail string) string {
	var b strings.Builder
	for i := 0; i < len(tail); i++ {
		switch {
		case strings.HasPrefix(tail[i:], "--"):
			i = skipLineComment(tail, i)
		case strings.HasPrefix(tail[i:], "/*"):
			i = skipBlockComment(tail, i)
		case tail[i] == ';':
		default:
			b.WriteByte(tail[i])
		}
	}
	return b.String()
}
