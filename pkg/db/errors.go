package db

import "strings"

// IsUniqueViolation reports whether err is a Postgres unique violation. With a
// constraint name it matches that specific constraint; without one it matches
// any duplicate-key failure.
func IsUniqueViolation(err error, constraint string) bool {
	if err == nil {
		return false
	}
	if constraint != "" {
		return strings.Contains(err.Error(), constraint)
	}
	return strings.Contains(err.Error(), "duplicate key value")
}
