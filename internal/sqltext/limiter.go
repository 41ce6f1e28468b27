package sqltext

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	trailingLimitPattern = regexp.MustCompile(`(?i)\bLIMIT\s+(\$[0-9]+|\?|@p[0-9]+|[0-9]+)\s*$`)
	leadingTopPattern    = regexp.MustCompile(`(?i)^(\s*SELECT\s+)TOP\s*\(?\s*([0-9]+|@p[0-9]+|\?)\s*\)?`)
	selectPrefixPattern  = regexp.MustCompile(`(?i)^(\s*SELECT\s+)`)
)

// ApplyMaxRows rewrites a SELECT statement so that it can never return more
// than n rows, without altering statements of any other kind. Three cases:
//
//   - no existing LIMIT/TOP clause: one is appended (LIMIT) or inserted
//     right after SELECT (TOP, for sqlserver).
//   - an existing literal LIMIT/TOP N: N is capped to min(N, n) in place.
//   - an existing parameterized LIMIT/TOP (a bind placeholder): the
//     statement is wrapped in a subquery carrying a literal limit, since
//     the bound value is not known until execution time and cannot be
//     capped in place.
//
// Non-SELECT statements (including statements that are not read-only) are
// returned unchanged; callers are expected to have already rejected
// mutating statements via the classifier before this is reached.
func ApplyMaxRows(sql string, d Dialect, n int) string {
	trimmed := strings.TrimRight(sql, " \t\n\r")
	hasSemicolon := strings.HasSuffix(trimmed, ";")
	body := strings.TrimSuffix(trimmed, ";")

	stripped := StripCommentsAndStrings(body, d)
	if FirstKeyword(body, d) != "select" {
		return sql
	}

	if d == SQLServer {
		return finish(applyTop(body, stripped, n), hasSemicolon)
	}
	return finish(applyLimit(body, stripped, n), hasSemicolon)
}

func finish(body string, hasSemicolon bool) string {
	if hasSemicolon {
		return body + ";"
	}
	return body
}

func applyLimit(body, stripped string, n int) string {
	loc := trailingLimitPattern.FindStringSubmatchIndex(stripped)
	if loc == nil {
		return fmt.Sprintf("%s LIMIT %d", strings.TrimRight(body, " \t\n\r"), n)
	}

	val := stripped[loc[2]:loc[3]]
	if lit, ok := parseUint(val); ok {
		capped := lit
		if n < lit {
			capped = n
		}
		valStart := origOffset(body, stripped, loc[2])
		valEnd := origOffset(body, stripped, loc[3])
		return body[:valStart] + strconv.Itoa(capped) + body[valEnd:]
	}

	return fmt.Sprintf("SELECT * FROM (%s) AS subq LIMIT %d", strings.TrimSpace(body), n)
}

func applyTop(body, stripped string, n int) string {
	if loc := leadingTopPattern.FindStringSubmatchIndex(stripped); loc != nil {
		val := stripped[loc[4]:loc[5]]
		if lit, ok := parseUint(val); ok {
			capped := lit
			if n < lit {
				capped = n
			}
			valStart := origOffset(body, stripped, loc[4])
			valEnd := origOffset(body, stripped, loc[5])
			return body[:valStart] + strconv.Itoa(capped) + body[valEnd:]
		}
		return fmt.Sprintf("SELECT TOP %d * FROM (%s) AS subq", n, strings.TrimSpace(body))
	}

	if loc := selectPrefixPattern.FindStringSubmatchIndex(stripped); loc != nil {
		insertPos := origOffset(body, stripped, loc[1])
		return body[:insertPos] + fmt.Sprintf("TOP %d ", n) + body[insertPos:]
	}

	// Unreachable in practice: FirstKeyword already confirmed a leading
	// SELECT, so the prefix pattern matched above.
	return fmt.Sprintf("SELECT TOP %d * FROM (%s) AS subq", n, strings.TrimSpace(body))
}

// origOffset maps a byte offset in the stripped view back onto the
// original text. Stripping replaces comment and quoted spans with spaces
// rune-for-rune, so rune offsets agree between the two views even when a
// stripped multibyte rune shrank to a single-byte space and the byte
// offsets diverged.
func origOffset(orig, stripped string, byteOff int) int {
	runeOff := utf8.RuneCountInString(stripped[:byteOff])
	for i := range orig {
		if runeOff == 0 {
			return i
		}
		runeOff--
	}
	return len(orig)
}

func parseUint(s string) (int, bool) {
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}
