package tool

import (
	"regexp"
	"strings"
)

// neverMatch is a regexp matching no input: its character class excludes
// every code point.
var neverMatch = regexp.MustCompile(`[^\x00-\x{10FFFF}]`)

// likeToRegexp translates a SQL LIKE pattern ("%" any run, "_" any single
// char) into an anchored, case-insensitive regular expression. Literal
// regex metacharacters in the pattern are escaped first.
func likeToRegexp(pattern string) *regexp.Regexp {
	if pattern == "" {
		pattern = "%"
	}
	var b strings.Builder
	b.WriteString("(?i)^")
	for _, r := range pattern {
		switch r {
		case '%':
			b.WriteString(".*")
		case '_':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	re, err := regexp.Compile(b.String())
	if err != nil {
		// An unparsable pattern matches nothing rather than everything.
		return neverMatch
	}
	return re
}

// matchesLike reports whether name matches a SQL LIKE-style pattern.
func matchesLike(name, pattern string) bool {
	return likeToRegexp(pattern).MatchString(name)
}
