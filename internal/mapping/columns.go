package mapping

import "strings"

// IDCandidates are tried in order when no id column is given.
var IDCandidates = []string{"participant_id", "subject", "id", "sub", "code", "token"}

// SessionCandidates are tried in order when no session column is given.
var SessionCandidates = []string{"session", "ses", "visit", "timepoint"}

// DefaultParticipantColumns are accepted as participant columns even when
// the library declares none.
var DefaultParticipantColumns = []string{"age", "sex", "gender", "education", "handedness", "completion_date"}

// bookkeepingColumns are survey platform columns never worth reporting.
var bookkeepingColumns = map[string]bool{
	"submitdate":    true,
	"lastpage":      true,
	"startlanguage": true,
	"seed":          true,
	"token":         true,
	"ipaddr":        true,
	"refurl":        true,
	"startdate":     true,
	"datestamp":     true,
	"interviewtime": true,
}

// IsBookkeeping reports whether column is a known platform bookkeeping column.
func IsBookkeeping(column string) bool {
	return bookkeepingColumns[strings.ToLower(strings.TrimSpace(column))]
}

// findColumn returns the first column equal to one of candidates, ignoring case.
func findColumn(columns, candidates []string) (string, bool) {
	for _, cand := range candidates {
		for _, col := range columns {
			if strings.EqualFold(strings.TrimSpace(col), cand) {
				return col, true
			}
		}
	}

	return "", false
}
