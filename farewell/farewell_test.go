package farewell

import (
	"bytes"
	"testing"
)

func TestGoodbye(t *testing.T) {
	var buf bytes.Buffer
	Goodbye(&buf)
	if buf.String() != "Goodbye!\n" {
		t.Errorf("Goodbye output = %q, want %q", buf.String(), "Goodbye!\n")
	}
}
