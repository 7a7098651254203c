package askdb

import (
	"fmt"
	"strings"
)

// deniedTokens are rejected anywhere in a candidate query: mutation and DDL
// keywords, the comment-based terminator, and UNION. This lexical denylist
// is a living contract; new dangerous keywords belong here. It is a
// known-incomplete defense (substring matching can be obfuscated around) and
// is deliberately not a SQL parser.
var deniedTokens = []string{
	"insert",
	"update",
	"delete",
	"drop",
	"alter",
	"create",
	"truncate",
	"grant",
	"revoke",
	";--",
	"union",
}

// Validate is the only gate between model output and the database. All
// checks run on a lower-cased, trimmed copy; the first failing check rejects.
// Fails closed.
func Validate(candidate CandidateQuery, schema SchemaDescriptor) Verdict {
	normalized := strings.ToLower(strings.TrimSpace(candidate.SQL))

	if !strings.HasPrefix(normalized, "select") {
		return Verdict{Reason: "only read queries allowed"}
	}

	for _, token := range deniedTokens {
		if strings.Contains(normalized, token) {
			return Verdict{Reason: fmt.Sprintf("query contains forbidden token %q", token)}
		}
	}

	for _, relation := range schema.RelationNames() {
		if strings.Contains(normalized, relation) {
			return Verdict{Accepted: true}
		}
	}
	return Verdict{Reason: "query must reference an allowed relation"}
}
