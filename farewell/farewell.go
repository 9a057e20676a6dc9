// Package farewell provides the goodbye routine the demo invokes before
// exiting. It lives in its own package so the demo entry point depends
// on it the way the original program depended on an externally declared
// collaborator.
package farewell

import (
	"fmt"
	"io"
)

// Goodbye writes the farewell line to w.
func Goodbye(w io.Writer) {
	fmt.Fprintln(w, "Goodbye!")
}
