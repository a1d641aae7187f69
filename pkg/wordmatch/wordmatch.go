// Package wordmatch compiles search expressions anchored to word
// boundaries, where a word character is alphanumeric or underscore.
package wordmatch

import (
	"fmt"
	"regexp"
)

// Matcher reports whether byte spans contain a wrapped expression. It is
// immutable after Compile and safe for concurrent use.
type Matcher struct {
	re   *regexp.Regexp
	expr string
}

// Compile wraps expr so a match cannot be immediately preceded or
// followed by a word character, then compiles the result. The wrap uses
// explicit character classes instead of \b, which disagrees with the
// class form when the expression itself starts or ends with a non-word
// character. The (?s) flag lets dot cross line breaks, since records
// span multiple lines.
func Compile(expr string) (*Matcher, error) {
	wrapped := fmt.Sprintf(`(?s)(?:^|[^[:alnum:]_])(?:%s)(?:[^[:alnum:]_]|$)`, expr)

	re, err := regexp.Compile(wrapped)
	if err != nil {
		return nil, fmt.Errorf("compile pattern %q: %w", expr, err)
	}

	return &Matcher{re: re, expr: expr}, nil
}

// Match reports whether data contains the expression at a word boundary.
func (m *Matcher) Match(data []byte) bool {
	return m.re.Match(data)
}

// Expr returns the original, unwrapped expression.
func (m *Matcher) Expr() string {
	return m.expr
}
