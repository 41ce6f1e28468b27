package param

import (
	"regexp"
	"sort"
	"strconv"
	"unicode/utf8"

	"github.com/dbgateway/gateway/internal/sqltext"
)

// Style is the placeholder convention a dialect's driver expects.
type Style int

const (
	// StylePositionalIndex covers "$1".."$N" (postgres) and "@p1".."@pN"
	// (sqlserver): each placeholder names its 1-based position explicitly.
	StylePositionalIndex Style = iota
	// StylePositionalOrdinal covers "?" (mysql/mariadb/sqlite): each
	// placeholder's position is its order of occurrence in the query text.
	StylePositionalOrdinal
	// StyleNamed covers ":name" (oracle/dameng).
	StyleNamed
)

// StyleForDialect returns the placeholder convention used by a dialect.
func StyleForDialect(d sqltext.Dialect) Style {
	switch d {
	case sqltext.Postgres, sqltext.SQLServer:
		return StylePositionalIndex
	case sqltext.Oracle, sqltext.DaMeng:
		return StyleNamed
	default:
		return StylePositionalOrdinal
	}
}

// Placeholder is one occurrence of a bind parameter found in SQL text.
type Placeholder struct {
	Index int    // 1-based position, for the two positional styles
	Name  string // parameter name, for StyleNamed
	Start int    // rune offset into the original SQL text
	End   int
}

var (
	dollarPattern = regexp.MustCompile(`\$([0-9]+)`)
	atpPattern    = regexp.MustCompile(`(?i)@p([0-9]+)`)
	colonPattern  = regexp.MustCompile(`:([A-Za-z_][A-Za-z0-9_]*)`)
)

// Enumerate finds every placeholder in sql, in the convention appropriate
// for d. It scans the comment/string-stripped view so placeholders that
// merely look like one inside a quoted literal or a comment are ignored.
func Enumerate(sql string, d sqltext.Dialect) []Placeholder {
	stripped := sqltext.StripCommentsAndStrings(sql, d)

	switch StyleForDialect(d) {
	case StylePositionalIndex:
		pattern := dollarPattern
		if d == sqltext.SQLServer {
			pattern = atpPattern
		}
		return matchIndexed(stripped, pattern)
	case StyleNamed:
		return matchNamed(stripped, colonPattern)
	default:
		return matchOrdinals(stripped)
	}
}

func matchIndexed(stripped string, pattern *regexp.Regexp) []Placeholder {
	locs := pattern.FindAllStringSubmatchIndex(stripped, -1)
	var out []Placeholder
	for _, loc := range locs {
		idx, _ := strconv.Atoi(stripped[loc[2]:loc[3]])
		start := runeOffset(stripped, loc[0])
		end := runeOffset(stripped, loc[1])
		out = append(out, Placeholder{Index: idx, Start: start, End: end})
	}
	return out
}

func matchNamed(stripped string, pattern *regexp.Regexp) []Placeholder {
	locs := pattern.FindAllStringSubmatchIndex(stripped, -1)
	var out []Placeholder
	for _, loc := range locs {
		name := stripped[loc[2]:loc[3]]
		start := runeOffset(stripped, loc[0])
		end := runeOffset(stripped, loc[1])
		out = append(out, Placeholder{Name: name, Start: start, End: end})
	}
	return out
}

func matchOrdinals(stripped string) []Placeholder {
	runes := []rune(stripped)
	var out []Placeholder
	idx := 0
	for i, r := range runes {
		if r == '?' {
			idx++
			out = append(out, Placeholder{Index: idx, Start: i, End: i + 1})
		}
	}
	return out
}

// runeOffset converts a byte offset within s (as produced by the regexp
// package) into a rune offset, since sqltext positions are rune offsets
// throughout.
func runeOffset(s string, byteOffset int) int {
	return utf8.RuneCountInString(s[:byteOffset])
}

// DistinctNames returns the sorted, de-duplicated set of names found among
// a StyleNamed placeholder list.
func DistinctNames(placeholders []Placeholder) []string {
	seen := map[string]bool{}
	var names []string
	for _, p := range placeholders {
		if !seen[p.Name] {
			seen[p.Name] = true
			names = append(names, p.Name)
		}
	}
	sort.Strings(names)
	return names
}

// MaxIndex returns the highest Index found among a positional-index
// placeholder list, or 0 if there are none.
func MaxIndex(placeholders []Placeholder) int {
	max := 0
	for _, p := range placeholders {
		if p.Index > max {
			max = p.Index
		}
	}
	return max
}
