// Package render turns scope dumps into human- and tool-facing views.
package render

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"scopemap/scanner"
)

// TerminalWidth returns the width of the terminal attached to stdout,
// or fallback when stdout is not a terminal.
func TerminalWidth(fallback int) int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return fallback
}

// Tree writes an indented scope tree with bindings to w. Lines are
// clipped to width when width > 0.
func Tree(w io.Writer, d *scanner.Dump, width int) {
	fmt.Fprintln(w, clip(fmt.Sprintf("=== Scopes: %s ===", d.Binary), width))

	children := childMap(d)
	var emit func(idx, depth int)
	emit = func(idx, depth int) {
		sc := d.Scopes[idx]
		indent := strings.Repeat("  ", depth)
		fmt.Fprintln(w, clip(indent+scopeLabel(sc)+extent(sc), width))
		for _, b := range sc.Bindings {
			fmt.Fprintln(w, clip(indent+"  · "+bindingLabel(d, b), width))
		}
		for _, c := range children[idx] {
			emit(c, depth+1)
		}
	}
	emit(0, 0)

	fmt.Fprintln(w)
	fmt.Fprintln(w, clip(fmt.Sprintf("%d scopes, %d bindings, %d types",
		len(d.Scopes), d.BindingCount(), len(d.Types)), width))
}

// childMap inverts the parent links so the tree can be emitted in
// declaration order.
func childMap(d *scanner.Dump) map[int][]int {
	children := make(map[int][]int)
	for i, sc := range d.Scopes {
		if sc.Parent != nil {
			children[*sc.Parent] = append(children[*sc.Parent], i)
		}
	}
	return children
}

func scopeLabel(sc scanner.Scope) string {
	if sc.Name != "" {
		return sc.Name
	}
	return "block"
}

func extent(sc scanner.Scope) string {
	if sc.Start == nil {
		return ""
	}
	file := sc.Start.File
	if i := strings.LastIndexByte(file, '/'); i >= 0 {
		file = file[i+1:]
	}
	if sc.End != nil && sc.End.Line >= sc.Start.Line {
		return fmt.Sprintf(" [%s:%d-%d]", file, sc.Start.Line, sc.End.Line)
	}
	return fmt.Sprintf(" [%s:%d]", file, sc.Start.Line)
}

func bindingLabel(d *scanner.Dump, b scanner.Binding) string {
	var sb strings.Builder
	sb.WriteString(b.Name)
	if b.Location != nil {
		fmt.Fprintf(&sb, " @ fbreg(%d)", *b.Location)
	}
	if b.Type != nil {
		sb.WriteString(": " + d.TypeName(*b.Type))
	}
	return sb.String()
}

func clip(line string, width int) string {
	if width <= 0 || len(line) <= width {
		return line
	}
	if width <= 1 {
		return line[:width]
	}
	return line[:width-1] + "…"
}
