package store

import (
	"fmt"
	"regexp"
	"strings"
)

var wordRe = regexp.MustCompile(`[A-Z_][A-Z0-9_]*`)

// disallowed holds keywords that never appear in a read-only query against the players table.
var disallowed = map[string]struct{}{
	"INSERT": {}, "UPDATE": {}, "DELETE": {}, "UPSERT": {}, "REPLACE": {}, "MERGE": {},
	"DROP": {}, "ALTER": {}, "CREATE": {}, "TRUNCATE": {}, "RENAME": {},
	"ATTACH": {}, "DETACH": {}, "PRAGMA": {}, "VACUUM": {}, "REINDEX": {},
	"GRANT": {}, "REVOKE": {}, "OPTIMIZE": {}, "SYSTEM": {}, "KILL": {},
	"OUTFILE": {}, "LOAD_EXTENSION": {},
}

// scalarFuncs are disallowed keywords that are also string functions in both
// dialects. Followed by "(" they are calls, not statements.
var scalarFuncs = map[string]struct{}{
	"REPLACE": {},
}

// ValidateReadOnly accepts a single SELECT (or WITH ... SELECT) statement and
// rejects anything that could mutate the store. String literals, quoted
// identifiers and comments are ignored when looking for keywords.
func ValidateReadOnly(query string) error {
	s := strings.TrimSpace(query)
	s = strings.TrimSpace(strings.TrimSuffix(s, ";"))
	if s == "" {
		return fmt.Errorf("%w: empty query", ErrNotReadOnly)
	}

	upper := strings.ToUpper(stripLiterals(s))
	locs := wordRe.FindAllStringIndex(upper, -1)
	if len(locs) == 0 {
		return fmt.Errorf("%w: only SELECT queries are allowed", ErrNotReadOnly)
	}
	if first := upper[locs[0][0]:locs[0][1]]; first != "SELECT" && first != "WITH" {
		return fmt.Errorf("%w: only SELECT queries are allowed", ErrNotReadOnly)
	}
	if strings.Contains(upper, ";") {
		return fmt.Errorf("%w: multiple statements are not allowed", ErrNotReadOnly)
	}
	for _, loc := range locs {
		w := upper[loc[0]:loc[1]]
		if _, bad := disallowed[w]; !bad {
			continue
		}
		if _, fn := scalarFuncs[w]; fn && isCall(upper[loc[1]:]) {
			continue
		}
		return fmt.Errorf("%w: disallowed keyword %s", ErrNotReadOnly, w)
	}
	return nil
}

func isCall(rest string) bool {
	return strings.HasPrefix(strings.TrimLeft(rest, " \t\r\n"), "(")
}

// stripLiterals blanks out quoted strings, quoted identifiers and comments.
func stripLiterals(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\'' || c == '"' || c == '`':
			quote := c
			i++
			for i < len(s) {
				if s[i] == quote {
					if i+1 < len(s) && s[i+1] == quote {
						i += 2
						continue
					}
					break
				}
				i++
			}
			b.WriteByte(' ')
		case c == '-' && i+1 < len(s) && s[i+1] == '-':
			for i < len(s) && s[i] != '\n' {
				i++
			}
			b.WriteByte(' ')
		case c == '/' && i+1 < len(s) && s[i+1] == '*':
			end := strings.Index(s[i+2:], "*/")
			if end < 0 {
				i = len(s)
			} else {
				i += end + 3
			}
			b.WriteByte(' ')
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
