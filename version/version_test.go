package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet(t *testing.T) {
	old := GitSHA
	GitSHA = "abc123"
	defer func() { GitSHA = old }()

	info := Get("tutor-service")

	assert.Equal(t, "tutor-service", info.Service)
	assert.Equal(t, BuildVersion, info.Version)
	assert.Equal(t, "abc123", info.GitSHA)
	assert.Equal(t, "abc123", Revision())
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, runtime.GOOS, info.GOOS)
}
