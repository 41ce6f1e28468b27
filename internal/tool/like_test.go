package tool

import "testing"

func TestMatchesLike(t *testing.T) {
	cases := []struct {
		name    string
		pattern string
		want    bool
	}{
		{"users", "user%", true},
		{"USERS", "user%", true},
		{"customers", "user%", false},
		{"order_items", "order_items", true},
		{"order_items", "order%items", true},
		{"order1items", "order_items", true},
		{"orderXXitems", "order_items", false},
		{"anything", "", true},
		{"anything", "%", true},
		{"literal.dot", "literal.dot", true},
		{"literalXdot", "literal.dot", false},
	}

	for _, c := range cases {
		if got := matchesLike(c.name, c.pattern); got != c.want {
			t.Errorf("matchesLike(%q, %q) = %v, want %v", c.name, c.pattern, got, c.want)
		}
	}
}

func TestLikeToRegexpNeverPanics(t *testing.T) {
	for _, pattern := range []string{``, `\`, `%%%%`, `[`, `(`, `a%b_c[d]e`} {
		likeToRegexp(pattern) // must not panic regardless of input
	}
}
