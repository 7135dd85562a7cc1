package errors

import "testing"

func TestErrorStringWithPosition(t *testing.T) {
	err := New(Semantic, Position{Line: 3, Column: 7}, "undeclared variable '%s'", "x")
	want := "semantic error at 3:7: undeclared variable 'x'"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestErrorStringWithoutPosition(t *testing.T) {
	err := New(Runtime, Position{}, "division by zero")
	want := "runtime error: division by zero"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestSemanticfBuildsSemanticCategory(t *testing.T) {
	err := Semanticf(Position{Line: 1, Column: 1}, "type mismatch")
	if err.Category != Semantic {
		t.Errorf("Category = %v, want Semantic", err.Category)
	}
}

func TestRuntimefBuildsRuntimeCategory(t *testing.T) {
	err := Runtimef(Position{Line: 1, Column: 1}, "nil reference")
	if err.Category != Runtime {
		t.Errorf("Category = %v, want Runtime", err.Category)
	}
}

func TestCategoryString(t *testing.T) {
	tests := []struct {
		cat      Category
		expected string
	}{
		{Lexical, "lexical"},
		{Parse, "parse"},
		{Semantic, "semantic"},
		{Runtime, "runtime"},
	}
	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.cat.String(); got != tt.expected {
				t.Errorf("String() = %v, want %v", got, tt.expected)
			}
		})
	}
}
