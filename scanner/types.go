// Package scanner extracts lexical scopes, variable bindings, and type
// chains from a compiled binary's DWARF debug data. It reads ELF and
// Mach-O binaries directly; no debugger session is involved.
package scanner

// TypeInfo is one entry in the deduplicated type table. Parent links
// follow DW_AT_type chains: a pointer's pointee, a typedef's underlying
// type, a const-qualified type's base.
type TypeInfo struct {
	Kind   string `json:"kind"`
	Name   string `json:"name,omitempty"`
	Size   int64  `json:"size,omitempty"`
	Parent *int   `json:"parent,omitempty"` // index into Dump.Types
}

// Binding is a variable, formal parameter, or constant declared in a scope.
type Binding struct {
	Name string `json:"name"`
	Kind string `json:"kind,omitempty"` // variable, parameter, constant

	// Location is the frame-relative slot the compiler assigned, when
	// the location expression is a plain DW_OP_fbreg offset.
	Location *int64 `json:"location,omitempty"`

	// Type indexes into Dump.Types; nil when the DIE carried no
	// resolvable type reference.
	Type *int `json:"type,omitempty"`
}

// SourceLoc is a source position resolved through the DWARF line tables.
type SourceLoc struct {
	File   string `json:"source"`
	Line   int    `json:"line"`
	Column int    `json:"column,omitempty"`
}

// Scope is one lexical scope: the synthetic global scope, a function, or
// a nested block. Parent indexes into Dump.Scopes; the global scope at
// index 0 has no parent.
type Scope struct {
	Name     string     `json:"name,omitempty"`
	Start    *SourceLoc `json:"start,omitempty"`
	End      *SourceLoc `json:"end,omitempty"`
	Parent   *int       `json:"parent,omitempty"`
	Bindings []Binding  `json:"bindings"`
}

// Dump is the full extraction result for one binary.
type Dump struct {
	Binary string     `json:"binary"`
	Types  []TypeInfo `json:"types"`
	Scopes []Scope    `json:"scopes"`
}

// Depth returns the nesting depth of scope i (the global scope is 0).
func (d *Dump) Depth(i int) int {
	depth := 0
	for p := d.Scopes[i].Parent; p != nil; p = d.Scopes[*p].Parent {
		depth++
		if depth > len(d.Scopes) {
			break // corrupt parent chain
		}
	}
	return depth
}

// BindingCount returns the total number of bindings across all scopes.
func (d *Dump) BindingCount() int {
	n := 0
	for _, sc := range d.Scopes {
		n += len(sc.Bindings)
	}
	return n
}

// TypeName resolves a human-readable name for type index idx, following
// parent links through qualifiers and typedefs.
func (d *Dump) TypeName(idx int) string {
	return d.typeName(idx, 0)
}

func (d *Dump) typeName(idx, depth int) string {
	if idx < 0 || idx >= len(d.Types) || depth > len(d.Types) {
		return "?"
	}
	t := d.Types[idx]
	switch t.Kind {
	case "pointer":
		if t.Parent == nil {
			return "*void"
		}
		return "*" + d.typeName(*t.Parent, depth+1)
	case "const":
		if t.Parent == nil {
			return "const void"
		}
		return "const " + d.typeName(*t.Parent, depth+1)
	case "typedef":
		if t.Name != "" {
			return t.Name
		}
	}
	if t.Name != "" {
		return t.Name
	}
	if t.Parent != nil {
		return d.typeName(*t.Parent, depth+1)
	}
	return t.Kind
}
