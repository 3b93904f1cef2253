package slogging

import (
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`([A-Za-z0-9._%+\-])[A-Za-z0-9._%+\-]*@([A-Za-z0-9.\-]+\.[A-Za-z]{2,})`)

// SanitizeLogMessage flattens control whitespace so a message stays on one
// line (CWE-117) and collapses runs of spaces.
func SanitizeLogMessage(message string) string {
	message = strings.NewReplacer("\n", " ", "\r", " ", "\t", " ").Replace(message)
	return strings.Join(strings.Fields(message), " ")
}

// RedactEmail masks the local part of every email address in s, keeping the
// first character and the domain.
func RedactEmail(s string) string {
	return emailPattern.ReplaceAllString(s, "$1***@$2")
}
