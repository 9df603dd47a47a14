package registry

import (
	"strings"

	"survey-curator/internal/match"
)

// minSharedToken is the shortest leading item token that counts as shared.
const minSharedToken = 2

// Classify decides whether two tasks claiming itemID are version variants
// of one instrument or unrelated duplicates.
func Classify(itemID, existingTask, incomingTask string) Classification {
	a := match.NormalizeName(existingTask)
	b := match.NormalizeName(incomingTask)

	if match.SharesPrefix(a, b) {
		return VersionCandidate
	}

	token := match.NormalizeName(match.LeadingToken(itemID))
	if len(token) >= minSharedToken && strings.Contains(a, token) && strings.Contains(b, token) {
		return VersionCandidate
	}

	return Duplicate
}
