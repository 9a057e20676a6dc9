package scanner

import "testing"

func intPtr(i int) *int { return &i }

// demoDump builds the shape the demo debuggee produces: a function scope
// with two nested blocks, each declaring s.
func demoDump() *Dump {
	off := int64(-8)
	return &Dump{
		Binary: "hello-demo",
		Types: []TypeInfo{
			{Kind: "base", Name: "int", Size: 8},
			{Kind: "pointer", Parent: intPtr(2)},
			{Kind: "base", Name: "char", Size: 1},
			{Kind: "const", Parent: intPtr(0)},
			{Kind: "typedef", Name: "Target", Parent: intPtr(0)},
		},
		Scopes: []Scope{
			{Name: "Global", Bindings: []Binding{}},
			{
				Name:   "main.shadow",
				Parent: intPtr(0),
				Start:  &SourceLoc{File: "hello.go", Line: 20},
				End:    &SourceLoc{File: "hello.go", Line: 32},
				Bindings: []Binding{
					{Name: "s", Kind: "variable", Location: &off, Type: intPtr(0)},
				},
			},
			{
				Parent: intPtr(1),
				Start:  &SourceLoc{File: "hello.go", Line: 22},
				End:    &SourceLoc{File: "hello.go", Line: 30},
				Bindings: []Binding{
					{Name: "s", Kind: "variable", Type: intPtr(0)},
				},
			},
			{
				Parent: intPtr(2),
				Start:  &SourceLoc{File: "hello.go", Line: 24},
				End:    &SourceLoc{File: "hello.go", Line: 27},
				Bindings: []Binding{
					{Name: "s", Kind: "variable", Type: intPtr(0)},
				},
			},
		},
	}
}

func TestDepth(t *testing.T) {
	d := demoDump()
	for i, want := range []int{0, 1, 2, 3} {
		if got := d.Depth(i); got != want {
			t.Errorf("Depth(%d) = %d, want %d", i, got, want)
		}
	}
}

func TestBindingCount(t *testing.T) {
	d := demoDump()
	if got := d.BindingCount(); got != 3 {
		t.Errorf("BindingCount = %d, want 3", got)
	}
}

func TestTypeName(t *testing.T) {
	d := demoDump()
	testCases := []struct {
		idx  int
		want string
	}{
		{0, "int"},
		{1, "*char"},
		{3, "const int"},
		{4, "Target"},
		{-1, "?"},
		{99, "?"},
	}
	for _, tc := range testCases {
		if got := d.TypeName(tc.idx); got != tc.want {
			t.Errorf("TypeName(%d) = %q, want %q", tc.idx, got, tc.want)
		}
	}
}

func TestDepthSurvivesCorruptParentChain(t *testing.T) {
	self := 1
	d := &Dump{Scopes: []Scope{
		{Name: "Global"},
		{Name: "loop", Parent: &self}, // points at itself
	}}
	// Must terminate rather than recurse forever.
	_ = d.Depth(1)
}
