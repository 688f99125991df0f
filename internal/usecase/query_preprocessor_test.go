package usecase

import (
	"reflect"
	"testing"
)

func TestNewQueryPreprocessor(t *testing.T) {
	p := NewQueryPreprocessor(nil)
	if p == nil || p.logger == nil {
		t.Fatal("expected preprocessor with a no-op logger")
	}
}

func TestPreprocessQuery(t *testing.T) {
	p := NewQueryPreprocessor(nil)

	testCases := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain name", input: "eggs", want: "eggs"},
		{name: "drops preparation note after comma", input: "garlic, minced", want: "garlic"},
		{name: "drops leading count and size word", input: "2 large eggs", want: "eggs"},
		{name: "drops attached mass", input: "500g pork belly", want: "pork belly"},
		{name: "drops fraction with unit", input: "1/2 cup milk", want: "milk"},
		{name: "drops amount in informal unit", input: "3 cloves garlic", want: "garlic"},
		{name: "drops parenthesized note", input: "soy sauce (light)", want: "soy sauce"},
		{name: "drops preparation words", input: "finely chopped scallions", want: "scallions"},
		{name: "replaces unsafe characters", input: "Salt & Pepper, to taste", want: "salt pepper"},
		{name: "empty input", input: "   ", want: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := p.PreprocessQuery(tc.input)
			if got != tc.want {
				t.Errorf("PreprocessQuery(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestPreprocessQuery_LimitsLength(t *testing.T) {
	p := NewQueryPreprocessor(nil)
	long := ""
	for i := 0; i < 30; i++ {
		long += "cabbage "
	}

	got := p.PreprocessQuery(long)
	if len(got) > 100 {
		t.Errorf("len = %d, want <= 100", len(got))
	}
	if got[len(got)-1] == ' ' {
		t.Errorf("query %q should end on a word boundary", got)
	}
}

func TestExtractFoodKeywords(t *testing.T) {
	p := NewQueryPreprocessor(nil)

	got := p.ExtractFoodKeywords("fresh garlic cloves")
	want := []string{"garlic", "fresh", "cloves"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractFoodKeywords = %v, want %v", got, want)
	}
}
