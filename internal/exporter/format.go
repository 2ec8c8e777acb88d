package exporter

import (
	"strconv"
)

// formatInt formats an int64 value for CSV output
func formatInt(i int64) string {
	return strconv.FormatInt(i, 10)
}

// formatBool formats a boolean the way the deployed tables spell it
func formatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

// formatOptional renders an absent value as an empty cell
func formatOptional(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
