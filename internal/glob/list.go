package glob

import (
	"errors"
	"strings"
)

// List is a compiled pattern list with negation. A path matches when it
// matches at least one positive pattern and no '!'-prefixed pattern.
type List struct {
	include []*Matcher
	exclude []*Matcher
}

// CompileList compiles every pattern in patterns. Invalid elements are
// skipped and reported in the joined error; the returned list is always
// usable.
func CompileList(patterns []string, opts Options) (*List, error) {
	l := &List{}
	var errs []error
	for _, raw := range patterns {
		if !IsValid(raw) {
			continue
		}
		p, negated := strings.CutPrefix(raw, "!")
		m, err := Compile(p, opts)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if negated {
			l.exclude = append(l.exclude, m)
		} else {
			l.include = append(l.include, m)
		}
	}
	return l, errors.Join(errs...)
}

// Empty reports whether the list has no positive patterns, in which case
// it matches nothing.
func (l *List) Empty() bool {
	return l == nil || len(l.include) == 0
}

// Match reports whether path matches the list.
func (l *List) Match(p string) bool {
	return l.match(p, (*Matcher).Match)
}

// MatchDir reports whether path, known to be a directory, matches the list.
func (l *List) MatchDir(p string) bool {
	return l.match(p, (*Matcher).MatchDir)
}

func (l *List) match(p string, fn func(*Matcher, string) bool) bool {
	if l.Empty() {
		return false
	}
	hit := false
	for _, m := range l.include {
		if fn(m, p) {
			hit = true
			break
		}
	}
	if !hit {
		return false
	}
	for _, m := range l.exclude {
		if fn(m, p) {
			return false
		}
	}
	return true
}

// MatchAny reports whether path matches the pattern list, honoring
// '!'-negated elements.
func MatchAny(p string, patterns []string, opts Options) bool {
	l, _ := CompileList(patterns, opts)
	return l.Match(p)
}
