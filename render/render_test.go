package render

import (
	"bytes"
	"strings"
	"testing"

	"scopemap/scanner"
)

func intPtr(i int) *int { return &i }

func testDump() *scanner.Dump {
	off := int64(-8)
	return &scanner.Dump{
		Binary: "hello-demo",
		Types: []scanner.TypeInfo{
			{Kind: "base", Name: "int", Size: 8},
		},
		Scopes: []scanner.Scope{
			{Name: "Global"},
			{
				Name:   "main.shadow",
				Parent: intPtr(0),
				Start:  &scanner.SourceLoc{File: "/src/hello.go", Line: 20, Column: 1},
				End:    &scanner.SourceLoc{File: "/src/hello.go", Line: 32, Column: 1},
				Bindings: []scanner.Binding{
					{Name: "s", Kind: "variable", Location: &off, Type: intPtr(0)},
				},
			},
			{
				Parent: intPtr(1),
				Start:  &scanner.SourceLoc{File: "/src/hello.go", Line: 22},
				End:    &scanner.SourceLoc{File: "/src/hello.go", Line: 30},
				Bindings: []scanner.Binding{
					{Name: "s", Kind: "variable", Type: intPtr(0)},
				},
			},
		},
	}
}

func TestTree(t *testing.T) {
	var buf bytes.Buffer
	Tree(&buf, testDump(), 0)
	out := buf.String()

	for _, want := range []string{
		"=== Scopes: hello-demo ===",
		"Global",
		"main.shadow [hello.go:20-32]",
		"s @ fbreg(-8): int",
		"block [hello.go:22-30]",
		"3 scopes, 2 bindings, 1 types",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Tree output missing %q:\n%s", want, out)
		}
	}

	// Nested block indented deeper than its function.
	funcLine := lineContaining(out, "main.shadow")
	blockLine := lineContaining(out, "block")
	if indentOf(blockLine) <= indentOf(funcLine) {
		t.Errorf("block not indented under its function:\n%s", out)
	}
}

func TestTreeClipsToWidth(t *testing.T) {
	var buf bytes.Buffer
	Tree(&buf, testDump(), 12)

	for _, line := range strings.Split(buf.String(), "\n") {
		// The clipped marker is multi-byte; measure in runes.
		if n := len([]rune(line)); n > 12 {
			t.Errorf("line longer than width %d: %q", 12, line)
		}
	}
}

func TestDAPScopes(t *testing.T) {
	view := DAPScopes(testDump())

	if len(view.Scopes) != 3 {
		t.Fatalf("DAPScopes produced %d scopes, want 3", len(view.Scopes))
	}

	sc := view.Scopes[1]
	if sc.Name != "main.shadow" {
		t.Errorf("scope name = %q, want main.shadow", sc.Name)
	}
	if sc.VariablesReference != 2 {
		t.Errorf("variablesReference = %d, want 2", sc.VariablesReference)
	}
	if sc.Line != 20 || sc.EndLine != 32 {
		t.Errorf("scope extent = %d-%d, want 20-32", sc.Line, sc.EndLine)
	}
	if sc.NamedVariables != 1 {
		t.Errorf("namedVariables = %d, want 1", sc.NamedVariables)
	}
	if view.Sources[2] != "/src/hello.go" {
		t.Errorf("source for ref 2 = %q, want /src/hello.go", view.Sources[2])
	}

	vars := view.Variables[2]
	if len(vars) != 1 {
		t.Fatalf("ref 2 has %d variables, want 1", len(vars))
	}
	if vars[0].Name != "s" || vars[0].Type != "int" {
		t.Errorf("variable = %+v, want s: int", vars[0])
	}
	if vars[0].Value != "fbreg(-8)" {
		t.Errorf("variable value = %q, want fbreg(-8)", vars[0].Value)
	}

	// Binding without a frame location falls back to its kind.
	if v := view.Variables[3][0]; v.Value != "<variable>" {
		t.Errorf("locationless value = %q, want <variable>", v.Value)
	}
}
func lineContaining(out, substr string) string {
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, substr) {
			return line
		}
	}
	return ""
}

func indentOf(line string) int {
	return len(line) - len(strings.TrimLeft(line, " "))
}
