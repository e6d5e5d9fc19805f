// Package pattern compiles glob-style filename patterns into reusable,
// case-insensitive matchers.
//
// Only two wildcards are recognised: '*' matches any run of characters
// (including none) and '?' matches exactly one character. Every other
// character, regular expression metacharacters included, matches literally.
// A pattern is always matched against the whole name.
package pattern

import (
	"errors"
	"regexp"
	"strings"
)

// ErrEmptyPattern is returned by Compile for a blank pattern.
var ErrEmptyPattern = errors.New("pattern is empty")

// Matcher is a compiled glob pattern. It is immutable and safe for
// concurrent use by multiple goroutines.
type Matcher struct {
	source string
	re     *regexp.Regexp
}

// Compile translates pattern into a Matcher.
func Compile(pattern string) (*Matcher, error) {
	if strings.TrimSpace(pattern) == "" {
		return nil, ErrEmptyPattern
	}

	var sb strings.Builder
	// (?i) case-insensitive, (?s) lets '.' match a newline inside a name
	sb.WriteString(`(?is)^`)
	literalStart := 0
	for i, r := range pattern {
		switch r {
		case '*', '?':
			sb.WriteString(regexp.QuoteMeta(pattern[literalStart:i]))
			if r == '*' {
				sb.WriteString(`.*`)
			} else {
				sb.WriteString(`.`)
			}
			literalStart = i + 1
		}
	}
	sb.WriteString(regexp.QuoteMeta(pattern[literalStart:]))
	sb.WriteString(`$`)

	// Every metacharacter is quoted, so this cannot fail for valid UTF-8.
	re, err := regexp.Compile(sb.String())
	if err != nil {
		return nil, err
	}
	return &Matcher{source: pattern, re: re}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(pattern string) *Matcher {
	m, err := Compile(pattern)
	if err != nil {
		panic("pattern: Compile(" + pattern + "): " + err.Error())
	}
	return m
}

// Matches reports whether name matches the pattern.
func (m *Matcher) Matches(name string) bool {
	return m.re.MatchString(name)
}

// String returns the source pattern.
func (m *Matcher) String() string {
	return m.source
}

// HasWildcards reports whether pattern contains '*' or '?'.
func HasWildcards(pattern string) bool {
	return strings.ContainsAny(pattern, "*?")
}
