package render

import (
	"strconv"

	"github.com/google/go-dap"

	"scopemap/scanner"
)

// DAPView pairs Debug Adapter Protocol scopes with their variables so
// tooling that already speaks DAP can consume scopemap output. Scope i
// in the dump becomes variablesReference i+1; DAP reserves 0 for "no
// children". Sources maps each reference to the scope's source file,
// which DAP itself attaches per stack frame rather than per scope.
type DAPView struct {
	Scopes    []dap.Scope            `json:"scopes"`
	Variables map[int][]dap.Variable `json:"variables"`
	Sources   map[int]string         `json:"sources,omitempty"`
}

// DAPScopes converts a dump into DAP-shaped scopes and variables.
func DAPScopes(d *scanner.Dump) *DAPView {
	view := &DAPView{
		Variables: make(map[int][]dap.Variable),
		Sources:   make(map[int]string),
	}

	for i, sc := range d.Scopes {
		ref := i + 1
		s := dap.Scope{
			Name:               scopeLabel(sc),
			VariablesReference: ref,
			NamedVariables:     len(sc.Bindings),
		}
		if sc.Start != nil {
			s.Line = sc.Start.Line
			s.Column = sc.Start.Column
			view.Sources[ref] = sc.Start.File
		}
		if sc.End != nil {
			s.EndLine = sc.End.Line
			s.EndColumn = sc.End.Column
		}
		view.Scopes = append(view.Scopes, s)

		vars := make([]dap.Variable, 0, len(sc.Bindings))
		for _, b := range sc.Bindings {
			v := dap.Variable{
				Name:  b.Name,
				Value: variableValue(b),
			}
			if b.Type != nil {
				v.Type = d.TypeName(*b.Type)
			}
			vars = append(vars, v)
		}
		view.Variables[ref] = vars
	}

	return view
}

// variableValue renders the static stand-in for a binding's value: the
// frame slot when known, else the binding kind. A static inspector has
// no live values to show.
func variableValue(b scanner.Binding) string {
	if b.Location != nil {
		return bindingLocation(*b.Location)
	}
	if b.Kind != "" {
		return "<" + b.Kind + ">"
	}
	return "<unknown>"
}

func bindingLocation(off int64) string {
	return "fbreg(" + strconv.FormatInt(off, 10) + ")"
}
