package greet

import (
	"bytes"
	"strings"
	"testing"
)

func TestGreeting(t *testing.T) {
	testCases := []struct {
		target   Target
		expected string
	}{
		{Target{N: 1, Name: "Jeena"}, "Hello, 1 Jeena!"},
		{Target{N: 10, Name: "Jeena"}, "Hello, 10 Jeenas!"},
		{Target{N: 0, Name: "Jeena"}, "Hello, 0 Jeenas!"},
		{Target{N: -3, Name: "Jeena"}, "Hello, -3 Jeenas!"},
		{Target{N: 2, Name: "gopher"}, "Hello, 2 gophers!"},
	}

	for _, tc := range testCases {
		result := Greeting(tc.target)
		if result != tc.expected {
			t.Errorf("Greeting(%+v) = %q, want %q", tc.target, result, tc.expected)
		}
	}
}

func TestHelloWritesNewlineTerminatedLine(t *testing.T) {
	var buf bytes.Buffer
	Hello(&buf, Target{N: 1, Name: "Jeena"})
	if buf.String() != "Hello, 1 Jeena!\n" {
		t.Errorf("Hello output = %q, want %q", buf.String(), "Hello, 1 Jeena!\n")
	}
}

func TestShadowOrder(t *testing.T) {
	var buf bytes.Buffer
	Shadow(&buf)

	expected := "s = 6\ns = 4\ns = 2\n"
	if buf.String() != expected {
		t.Errorf("Shadow output = %q, want %q", buf.String(), expected)
	}
}

func TestDemoFullRun(t *testing.T) {
	var buf bytes.Buffer
	goodbyeCalled := false

	// No-op goodbye collaborator: the demo must still produce the
	// greeting, the three shadow lines, and the arithmetic line in order.
	Demo(&buf, func() { goodbyeCalled = true })

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	expected := []string{
		"Hello, 10 Jeenas!",
		"s = 6",
		"s = 4",
		"s = 2",
		"5 + 10 = 15",
	}
	if len(lines) != len(expected) {
		t.Fatalf("Demo produced %d lines, want %d:\n%s", len(lines), len(expected), buf.String())
	}
	for i, want := range expected {
		if lines[i] != want {
			t.Errorf("Demo line %d = %q, want %q", i, lines[i], want)
		}
	}
	if !goodbyeCalled {
		t.Error("Demo did not invoke the goodbye collaborator")
	}
}
