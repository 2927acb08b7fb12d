package compiler

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/c360/semquery/errors"
)

// Params binds placeholder names to their resolved values. Values must
// already be escaped for the position they fill; Resolve substitutes text, it
// does not quote.
type Params map[string]string

// Placeholders are single-brace lowercase tokens such as {entity_id}. Graph
// pattern braces in SPARQL always enclose whitespace-separated triples, so
// the token shape below cannot collide with them.
var placeholderRe = regexp.MustCompile(`\{[a-z][a-z0-9_]*\}`)

// Resolve substitutes every bound parameter into the template and verifies
// that no placeholder token survives in the output. A leftover token means
// the template demands a value the caller never bound, which is a
// configuration defect, not a runtime one.
func Resolve(template string, params Params) (string, error) {
	text := template
	for name, value := range params {
		text = strings.ReplaceAll(text, "{"+name+"}", value)
	}

	if leftover := placeholderRe.FindString(text); leftover != "" {
		return "", errors.WrapConfig(errors.ErrUnresolvedPlaceholder, "Compiler", "Resolve",
			fmt.Sprintf("placeholder %s not bound", leftover))
	}
	return text, nil
}

// EscapeLiteral prepares untrusted text for a single-quoted SQL string
// literal position: quote doubling plus removal of control characters.
func EscapeLiteral(s string) string {
	s = stripControl(s)
	return strings.ReplaceAll(s, "'", "''")
}

// EscapeTerm prepares untrusted text for a quoted SPARQL literal position.
func EscapeTerm(s string) string {
	s = stripControl(s)
	r := strings.NewReplacer(
		`\`, `\\`,
		`"`, `\"`,
		`'`, `\'`,
	)
	return r.Replace(s)
}

func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return ' '
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
}
