// The hello binary is the bundled demo debuggee: struct-passing, a
// pluralized greeting, nested shadowed bindings, and an external
// farewell call. Build it with optimizations disabled to keep its DWARF
// lexical blocks intact:
//
//	go build -gcflags="all=-N -l" -o hello-demo ./hello
//
// Then point scopemap at the result to inspect its scopes.
package main

import (
	"os"

	"scopemap/farewell"
	"scopemap/greet"
)

func main() {
	greet.Demo(os.Stdout, func() {
		farewell.Goodbye(os.Stdout)
	})
}
