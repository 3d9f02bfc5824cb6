package querygen

import (
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
)

// forbiddenKeywords are statement types that must never reach the
// warehouse. Matched as whole words, case-insensitively.
var forbiddenKeywords = regexp.MustCompile(`(?i)\b(INSERT|UPDATE|DELETE|MERGE|DROP|CREATE|ALTER|TRUNCATE|GRANT|REVOKE|CALL|EXECUTE)\b`)

// Validate checks that sql is a single bounded SELECT against the
// expected table. It is a guardrail for generated SQL, not a parser:
// anything suspicious is rejected.
func Validate(sql, table string) error {
	trimmed := strings.TrimSpace(sql)
	if trimmed == "" {
		return eris.New("querygen: empty statement")
	}

	upper := strings.ToUpper(trimmed)
	if !strings.HasPrefix(upper, "SELECT") && !strings.HasPrefix(upper, "WITH") {
		return eris.New("querygen: statement must be a SELECT")
	}
	if strings.Contains(strings.TrimSuffix(trimmed, ";"), ";") {
		return eris.New("querygen: multiple statements")
	}
	if m := forbiddenKeywords.FindString(trimmed); m != "" {
		return eris.Errorf("querygen: forbidden keyword %q", strings.ToUpper(m))
	}
	if !strings.Contains(trimmed, table) {
		return eris.Errorf("querygen: statement does not read %s", table)
	}
	if !strings.Contains(upper, "ST_DISTANCE") {
		return eris.New("querygen: statement has no spatial bound")
	}
	return nil
}
