package version_test

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sumatoshi-tech/ygg/pkg/version"
)

func TestGet(t *testing.T) {
	t.Parallel()

	info := version.Get()

	assert.NotEmpty(t, info.Version)
	assert.NotEmpty(t, info.Commit)
	assert.Equal(t, runtime.Version(), info.GoVersion)
}

func TestInfoString(t *testing.T) {
	t.Parallel()

	info := version.Info{Version: "v1.0.0", Commit: "abc", Date: "2026-01-01", GoVersion: "go1.24.5"}

	assert.Equal(t, "v1.0.0 (commit abc, built 2026-01-01, go1.24.5)", info.String())
}
