//go:build !yggdebug

package bst

// Assertions is true when the yggdebug build tag enables precondition checks.
const Assertions = false
