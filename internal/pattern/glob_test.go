package pattern

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		input   string
		want    bool
	}{
		{name: "star suffix", pattern: "*.txt", input: "a.txt", want: true},
		{name: "star suffix mismatch", pattern: "*.txt", input: "a.md", want: false},
		{name: "star matches empty run", pattern: "*.txt", input: ".txt", want: true},
		{name: "case insensitive", pattern: "*.TXT", input: "Report.txt", want: true},
		{name: "case insensitive literal", pattern: "readme", input: "README", want: true},
		{name: "question mark single char", pattern: "?.go", input: "a.go", want: true},
		{name: "question mark needs one char", pattern: "?.go", input: ".go", want: false},
		{name: "question mark not two chars", pattern: "?.go", input: "ab.go", want: false},
		{name: "question mark multibyte rune", pattern: "?.txt", input: "é.txt", want: true},
		{name: "anchored whole name", pattern: "main", input: "main.go", want: false},
		{name: "star in middle", pattern: "plan-*.md", input: "plan-001.md", want: true},
		{name: "dot is literal", pattern: "a.c", input: "abc", want: false},
		{name: "plus is literal", pattern: "c++*", input: "c++.txt", want: true},
		{name: "brackets are literal", pattern: "[ab].txt", input: "a.txt", want: false},
		{name: "brackets match themselves", pattern: "[ab].txt", input: "[AB].txt", want: true},
		{name: "parens and pipe literal", pattern: "(x|y)*", input: "(x|y)1", want: true},
		{name: "caret and dollar literal", pattern: "^$*", input: "^$.log", want: true},
		{name: "backslash literal", pattern: `a\b`, input: `a\b`, want: true},
		{name: "only star", pattern: "*", input: "anything", want: true},
		{name: "newline in name", pattern: "a*b", input: "a\nb", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Compile(tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.Matches(tt.input))
		})
	}
}

func TestCompileEmpty(t *testing.T) {
	for _, p := range []string{"", "   ", "\t"} {
		_, err := Compile(p)
		assert.ErrorIs(t, err, ErrEmptyPattern)
	}
}

func TestMustCompilePanicsOnEmpty(t *testing.T) {
	assert.Panics(t, func() { MustCompile("") })
	assert.NotPanics(t, func() { MustCompile("*.go") })
}

func TestMatcherString(t *testing.T) {
	m := MustCompile("*.Go")
	assert.Equal(t, "*.Go", m.String())
}

func TestHasWildcards(t *testing.T) {
	assert.True(t, HasWildcards("*.go"))
	assert.True(t, HasWildcards("a?c"))
	assert.False(t, HasWildcards("main.go"))
}

func TestMatcherConcurrentUse(t *testing.T) {
	m := MustCompile("file-??.log")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				assert.True(t, m.Matches("FILE-01.log"))
				assert.False(t, m.Matches("file-1.log"))
			}
		}()
	}
	wg.Wait()
}
