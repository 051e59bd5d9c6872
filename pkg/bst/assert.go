package bst

import "fmt"

// Assert panics with a formatted message when Assertions are compiled in and
// cond is false. Guard expensive conditions with `if Assertions`.
func Assert(cond bool, format string, args ...any) {
	if Assertions && !cond {
		panic(fmt.Sprintf("ygg: assertion failed: "+format, args...))
	}
}
