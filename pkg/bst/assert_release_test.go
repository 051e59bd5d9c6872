//go:build !yggdebug

package bst //nolint:testpackage // tests reach the engine primitives directly.

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAssertionsCompiledOut(t *testing.T) {
	t.Parallel()

	require.False(t, Assertions)
	require.NotPanics(t, func() { Assert(false, "value %d", 7) })
}
