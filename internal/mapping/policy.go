package mapping

import (
	"fmt"
	"strings"
)

// Policy decides what happens to unmapped columns.
type Policy string

const (
	PolicyError  Policy = "error"
	PolicyWarn   Policy = "warn"
	PolicyIgnore Policy = "ignore"
)

// ParsePolicy parses a policy name. The empty string means PolicyWarn.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicyWarn, nil
	case PolicyError, PolicyWarn, PolicyIgnore:
		return p, nil
	default:
		return "", fmt.Errorf("unknown unmapped column policy %q (want error, warn or ignore)", s)
	}
}
