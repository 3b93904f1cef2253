package envutil

import (
	"os"
	"strings"
)

// Prefix is prepended to every variable name when the bare name is not set.
const Prefix = "PERSONNEL_"

// Lookup retrieves an environment variable, checking PERSONNEL_<KEY> first
// and then the exact key. Deployments set the prefixed form; local
// development often uses the bare one.
func Lookup(key string) (string, bool) {
	if !strings.HasPrefix(key, Prefix) {
		if value, exists := os.LookupEnv(Prefix + key); exists {
			return value, true
		}
	}
	return os.LookupEnv(key)
}

// Get returns the variable or fallback when unset
func Get(key, fallback string) string {
	if value, ok := Lookup(key); ok {
		return value
	}
	return fallback
}
