package scanner

import (
	"debug/dwarf"
	"fmt"
)

// scopeTags are DIE tags that introduce a lexical scope.
var scopeTags = map[dwarf.Tag]bool{
	dwarf.TagSubprogram:      true,
	dwarf.TagLexDwarfBlock:   true,
	dwarf.TagTryDwarfBlock:   true,
	dwarf.TagCatchDwarfBlock: true,
}

// bindingTags map DIE tags that declare a binding to the binding kind.
var bindingTags = map[dwarf.Tag]string{
	dwarf.TagVariable:        "variable",
	dwarf.TagFormalParameter: "parameter",
	dwarf.TagConstant:        "constant",
}

// typeTags map DIE tags we record in the type table to a normalized kind.
var typeTags = map[dwarf.Tag]string{
	dwarf.TagBaseType:        "base",
	dwarf.TagConstType:       "const",
	dwarf.TagPointerType:     "pointer",
	dwarf.TagTypedef:         "typedef",
	dwarf.TagStructType:      "struct",
	dwarf.TagClassType:       "class",
	dwarf.TagEnumerationType: "enum",
	dwarf.TagUnionType:       "union",
	dwarf.TagArrayType:       "array",
	dwarf.TagSubrangeType:    "subrange",
}

// extractor accumulates a Dump while walking the DIE tree.
type extractor struct {
	data      *dwarf.Data
	typeRd    *dwarf.Reader          // dedicated reader for random-access type resolution
	dump      *Dump
	typeIndex map[dwarf.Offset]int   // DIE offset -> Dump.Types index
	lines     *dwarf.LineReader      // current compile unit's line table, may be nil
	stack     []int                  // open scope indices; stack[0] is the global scope
	nesting   []int                  // scope opened at each DIE depth, -1 when none
}

// Extract reads path's DWARF data and returns the scope dump: a
// deduplicated type table and the scope tree with its bindings, rooted
// at a synthetic global scope.
func Extract(path string) (*Dump, error) {
	data, err := openDWARF(path)
	if err != nil {
		return nil, err
	}

	ex := &extractor{
		data:      data,
		typeRd:    data.Reader(),
		dump:      &Dump{Binary: path},
		typeIndex: make(map[dwarf.Offset]int),
	}
	ex.dump.Scopes = append(ex.dump.Scopes, Scope{Name: "Global", Bindings: []Binding{}})
	ex.stack = []int{0}

	if err := ex.walk(); err != nil {
		return nil, err
	}
	return ex.dump, nil
}

// walk drives the flattened DIE iterator. A nil Tag entry marks the end
// of the previous entry's children; the nesting stack tracks which
// depths opened a scope so those ends pop it again.
func (ex *extractor) walk() error {
	r := ex.data.Reader()
	for {
		e, err := r.Next()
		if err != nil {
			return fmt.Errorf("reading DWARF entries: %w", err)
		}
		if e == nil {
			return nil
		}
		if e.Tag == 0 {
			if n := len(ex.nesting); n > 0 {
				if ex.nesting[n-1] >= 0 && len(ex.stack) > 1 {
					ex.stack = ex.stack[:len(ex.stack)-1]
				}
				ex.nesting = ex.nesting[:n-1]
			}
			continue
		}

		opened := -1
		switch {
		case e.Tag == dwarf.TagCompileUnit:
			// Refresh the line table for source position lookups.
			if lr, err := ex.data.LineReader(e); err == nil {
				ex.lines = lr
			} else {
				ex.lines = nil
			}
		case scopeTags[e.Tag]:
			opened = ex.openScope(e)
		case bindingTags[e.Tag] != "":
			ex.addBinding(e)
		case typeTags[e.Tag] != "":
			ex.typeFor(e.Offset)
		}

		if e.Children {
			ex.nesting = append(ex.nesting, opened)
		} else if opened >= 0 {
			// Childless scope: no end-of-children entry will close it.
			ex.stack = ex.stack[:len(ex.stack)-1]
		}
	}
}

func (ex *extractor) openScope(e *dwarf.Entry) int {
	parent := ex.stack[len(ex.stack)-1]
	sc := Scope{Parent: &parent, Bindings: []Binding{}}
	if name, ok := e.Val(dwarf.AttrName).(string); ok {
		sc.Name = name
	}
	if low, ok := e.Val(dwarf.AttrLowpc).(uint64); ok {
		sc.Start = ex.locate(low)
		if high, ok := highPC(e, low); ok && high > low {
			sc.End = ex.locate(high - 1)
		}
	}

	idx := len(ex.dump.Scopes)
	ex.dump.Scopes = append(ex.dump.Scopes, sc)
	ex.stack = append(ex.stack, idx)
	return idx
}

func (ex *extractor) addBinding(e *dwarf.Entry) {
	name, ok := e.Val(dwarf.AttrName).(string)
	if !ok {
		return // compiler-generated artificial entries
	}

	b := Binding{Name: name, Kind: bindingTags[e.Tag]}
	if expr, ok := e.Val(dwarf.AttrLocation).([]byte); ok {
		if off, ok := FrameOffset(expr); ok {
			b.Location = &off
		}
	}
	if typOff, ok := e.Val(dwarf.AttrType).(dwarf.Offset); ok {
		b.Type = ex.typeFor(typOff)
	}

	cur := ex.stack[len(ex.stack)-1]
	ex.dump.Scopes[cur].Bindings = append(ex.dump.Scopes[cur].Bindings, b)
}

// typeFor returns the type table index for the DIE at off, creating the
// entry (and its parent chain) on first sight. The entry is registered
// before the parent is resolved so self-referential chains terminate.
func (ex *extractor) typeFor(off dwarf.Offset) *int {
	if idx, ok := ex.typeIndex[off]; ok {
		return &idx
	}

	ex.typeRd.Seek(off)
	e, err := ex.typeRd.Next()
	if err != nil || e == nil {
		return nil
	}
	kind, ok := typeTags[e.Tag]
	if !ok {
		kind = "unknown"
	}

	ti := TypeInfo{Kind: kind}
	if name, ok := e.Val(dwarf.AttrName).(string); ok {
		ti.Name = name
	}
	if size, ok := e.Val(dwarf.AttrByteSize).(int64); ok {
		ti.Size = size
	}

	idx := len(ex.dump.Types)
	ex.dump.Types = append(ex.dump.Types, ti)
	ex.typeIndex[off] = idx

	if parentOff, ok := e.Val(dwarf.AttrType).(dwarf.Offset); ok {
		ex.dump.Types[idx].Parent = ex.typeFor(parentOff)
	}
	return &idx
}

// locate resolves pc to a source position through the current compile
// unit's line table.
func (ex *extractor) locate(pc uint64) *SourceLoc {
	if ex.lines == nil {
		return nil
	}
	var entry dwarf.LineEntry
	if err := ex.lines.SeekPC(pc, &entry); err != nil {
		return nil
	}
	loc := &SourceLoc{Line: entry.Line, Column: entry.Column}
	if entry.File != nil {
		loc.File = entry.File.Name
	}
	return loc
}

// highPC returns the scope end address. DW_AT_high_pc is either an
// absolute address or a constant offset from the low PC.
func highPC(e *dwarf.Entry, low uint64) (uint64, bool) {
	switch v := e.Val(dwarf.AttrHighpc).(type) {
	case uint64:
		return v, true
	case int64:
		return low + uint64(v), true
	}
	return 0, false
}
