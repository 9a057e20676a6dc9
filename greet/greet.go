// Package greet implements the bundled demo program: a pluralized
// greeting for a named count, a nested-shadowing demonstration, and the
// orchestration that ties them together. The compiled demo doubles as
// scopemap's reference debuggee, since its shadowed bindings are exactly
// what the scope queries are built to surface.
package greet

import (
	"fmt"
	"io"
)

// Target is a greeting target: a count of things to greet and their name.
type Target struct {
	N    int    `json:"n"`
	Name string `json:"name"`
}

// DefaultCount is the count the demo greets.
const DefaultCount = 10

// DefaultTarget is the target the demo greets.
var DefaultTarget = Target{N: DefaultCount, Name: "Jeena"}

// Greeting formats the greeting line for t, pluralizing the name when
// the count is anything other than one. Zero and negative counts are
// printed verbatim.
func Greeting(t Target) string {
	suffix := "s"
	if t.N == 1 {
		suffix = ""
	}
	return fmt.Sprintf("Hello, %d %s%s!", t.N, t.Name, suffix)
}

// Hello writes the greeting line for t to w.
func Hello(w io.Writer, t Target) {
	fmt.Fprintln(w, Greeting(t))
}

// Shadow declares three nested bindings of the same name and prints each
// block's local value as control returns outward, innermost first. Each
// block's s is independent; leaving a block reveals the enclosing value.
func Shadow(w io.Writer) {
	s := 2
	{
		s := 4
		{
			s := 6
			fmt.Fprintf(w, "s = %d\n", s)
		}
		fmt.Fprintf(w, "s = %d\n", s)
	}
	fmt.Fprintf(w, "s = %d\n", s)
}

// Demo runs the full demo sequence against w: the greeting for the
// default target, the shadowing demonstration, an arithmetic line, and
// finally the externally provided goodbye collaborator.
func Demo(w io.Writer, goodbye func()) {
	Hello(w, DefaultTarget)
	Shadow(w)

	a := 5
	b := 10
	fmt.Fprintf(w, "%d + %d = %d\n", a, b, a+b)

	goodbye()
}
