package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetVersion(t *testing.T) {
	origMajor, origMinor, origPatch, origCommit := VersionMajor, VersionMinor, VersionPatch, GitCommit
	t.Cleanup(func() {
		VersionMajor, VersionMinor, VersionPatch, GitCommit = origMajor, origMinor, origPatch, origCommit
	})

	VersionMajor, VersionMinor, VersionPatch, GitCommit = "2", "5", "x", "abc123"
	v := GetVersion()
	assert.Equal(t, 2, v.Major)
	assert.Equal(t, 5, v.Minor)
	assert.Equal(t, 0, v.Patch, "unparseable parts become zero")
	assert.Equal(t, "v1", v.APIVersion)
	assert.Contains(t, GetVersionString(), "personnel 2.5.0 (abc123")
}
