package index

import (
	"sort"
	"strings"

	"scopemap/scanner"
)

// BindingRef locates one binding within a dump.
type BindingRef struct {
	ScopeIndex int             `json:"scope"`
	ScopeName  string          `json:"scope_name,omitempty"`
	Depth      int             `json:"depth"`
	Binding    scanner.Binding `json:"binding"`

	// Shadows is the scope index of the nearest enclosing declaration
	// this binding hides, when one exists.
	Shadows *int `json:"shadows,omitempty"`
}

// FindBindings returns every binding named name in d, outermost first.
func FindBindings(d *scanner.Dump, name string) []BindingRef {
	var refs []BindingRef
	for i, sc := range d.Scopes {
		for _, b := range sc.Bindings {
			if b.Name == name {
				refs = append(refs, BindingRef{
					ScopeIndex: i,
					ScopeName:  sc.Name,
					Depth:      d.Depth(i),
					Binding:    b,
				})
			}
		}
	}
	sort.SliceStable(refs, func(a, b int) bool {
		if refs[a].Depth != refs[b].Depth {
			return refs[a].Depth < refs[b].Depth
		}
		return refs[a].ScopeIndex < refs[b].ScopeIndex
	})
	return refs
}

// ShadowChain annotates the declaring scopes of name with the enclosing
// declaration each one hides: for each binding, the nearest ancestor
// scope that also declares name. The demo debuggee's three nested s
// bindings come back as a chain of two shadowed declarations.
func ShadowChain(d *scanner.Dump, name string) []BindingRef {
	refs := FindBindings(d, name)

	declaring := make(map[int]bool, len(refs))
	for _, r := range refs {
		declaring[r.ScopeIndex] = true
	}

	for i := range refs {
		steps := 0
		for p := d.Scopes[refs[i].ScopeIndex].Parent; p != nil; p = d.Scopes[*p].Parent {
			if declaring[*p] {
				hidden := *p
				refs[i].Shadows = &hidden
				break
			}
			steps++
			if steps > len(d.Scopes) {
				break // corrupt parent chain
			}
		}
	}
	return refs
}

// ScopesAtLine returns the indices of scopes whose resolved extent
// covers file:line, outermost first. File matches on suffix so callers
// can pass a bare file name against compiler-recorded absolute paths.
func ScopesAtLine(d *scanner.Dump, file string, line int) []int {
	var out []int
	for i, sc := range d.Scopes {
		if sc.Start == nil || sc.End == nil {
			continue
		}
		if !strings.HasSuffix(sc.Start.File, file) {
			continue
		}
		if sc.Start.Line <= line && line <= sc.End.Line {
			out = append(out, i)
		}
	}
	sort.Slice(out, func(a, b int) bool {
		return d.Depth(out[a]) < d.Depth(out[b])
	})
	return out
}
