// Package glob compiles shell-style glob patterns into anchored regular
// expressions over slash-separated paths.
//
//   - *  matches within a path segment (no '/')
//   - ** matches across segments; "**/" may match zero segments and a
//     trailing "/**" matches the directory itself as well as its contents
//   - ?  matches one character other than '/'
//   - [abc], [a-z], [!a-z] and [^a-z] are character classes
//   - {a,b} and {1..3} expand to alternatives (see Expand)
//   - \x matches x literally
//
// A trailing '/' makes a pattern directory-only. Backslashes are treated as
// path separators unless they escape a metacharacter.
package glob

import (
	"errors"
	"fmt"
	"path"
	"regexp"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// ErrInvalidPattern is returned by Compile for empty patterns and for
// patterns that do not translate to a valid expression (e.g. [z-a]).
var ErrInvalidPattern = errors.New("glob: invalid pattern")

// metaChars are the characters a backslash may escape.
const metaChars = `*?[]{}()+^$|!,`

// escapeChars are the characters Escape protects.
const escapeChars = `*?[]{}()+^$|`

type Options struct {
	// NoCase folds both pattern and candidate path to lower case.
	NoCase bool
}

// Matcher is a compiled glob pattern. It is immutable and safe for
// concurrent use.
type Matcher struct {
	source  string
	re      *regexp.Regexp
	dirOnly bool
	noCase  bool
}

type cacheKey struct {
	source  string
	dirOnly bool
	noCase  bool
}

func (k cacheKey) String() string {
	return fmt.Sprintf("%t|%t|%s", k.dirOnly, k.noCase, k.source)
}

var (
	compiled sync.Map // cacheKey -> *Matcher
	inflight singleflight.Group
)

// IsValid reports whether pattern can be passed to Compile.
func IsValid(pattern string) bool {
	return strings.TrimSpace(pattern) != ""
}

// Compile returns the matcher for pattern. Matchers are cached for the
// lifetime of the process, so compiling the same pattern twice is cheap.
func Compile(pattern string, opts Options) (*Matcher, error) {
	if !IsValid(pattern) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPattern, pattern)
	}

	src := normalizePattern(pattern)
	if opts.NoCase {
		src = strings.ToLower(src)
	}
	dirOnly := false
	if len(src) > 1 && strings.HasSuffix(src, "/") {
		dirOnly = true
		src = strings.TrimRight(src, "/")
		if src == "" {
			src = "/"
		}
	}

	key := cacheKey{source: src, dirOnly: dirOnly, noCase: opts.NoCase}
	if m, ok := compiled.Load(key); ok {
		return m.(*Matcher), nil
	}

	v, err, _ := inflight.Do(key.String(), func() (any, error) {
		if m, ok := compiled.Load(key); ok {
			return m, nil
		}
		re, err := regexp.Compile(toRegexp(src))
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, pattern, err)
		}
		m := &Matcher{source: src, re: re, dirOnly: dirOnly, noCase: opts.NoCase}
		compiled.Store(key, m)
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Matcher), nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(pattern string, opts Options) *Matcher {
	m, err := Compile(pattern, opts)
	if err != nil {
		panic(err)
	}
	return m
}

// Source returns the normalized pattern without any trailing '/'.
func (m *Matcher) Source() string { return m.source }

// DirOnly reports whether the pattern only matches directories.
func (m *Matcher) DirOnly() bool { return m.dirOnly }

// Match reports whether path matches. A path ending in '/' is treated as a
// directory.
func (m *Matcher) Match(p string) bool {
	return m.match(p, false)
}

// MatchDir reports whether path, known to be a directory, matches.
func (m *Matcher) MatchDir(p string) bool {
	return m.match(p, true)
}

func (m *Matcher) match(p string, isDir bool) bool {
	p = Normalize(p)
	if m.noCase {
		p = strings.ToLower(p)
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		isDir = true
		p = strings.TrimSuffix(p, "/")
	}
	if m.dirOnly && !isDir {
		return false
	}
	return m.re.MatchString(p)
}

// IsMatch reports whether path matches a single pattern. A leading '!' has
// no special meaning here; use MatchAny for negation lists.
func IsMatch(p, pattern string, opts Options) bool {
	m, err := Compile(pattern, opts)
	if err != nil {
		return false
	}
	return m.Match(p)
}

// Normalize converts path to the form matchers compare against: backslashes
// become '/', the path is cleaned, and a trailing '/' is kept as a directory
// marker. Normalize is idempotent.
func Normalize(p string) string {
	if p == "" {
		return ""
	}
	p = strings.ReplaceAll(p, `\`, "/")
	dir := len(p) > 1 && strings.HasSuffix(p, "/")
	p = path.Clean(p)
	if dir && p != "/" {
		p += "/"
	}
	return p
}

// Escape backslash-escapes glob metacharacters in raw so the result matches
// raw literally. A leading '!' is escaped too, so escaped names are never
// read as negations inside a pattern list.
func Escape(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if strings.IndexByte(escapeChars, c) >= 0 || (i == 0 && c == '!') {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	return b.String()
}

func isMeta(c byte) bool {
	return strings.IndexByte(metaChars, c) >= 0
}

// normalizePattern folds separator backslashes to '/' and leaves escapes
// of metacharacters alone.
func normalizePattern(p string) string {
	var b strings.Builder
	b.Grow(len(p))
	for i := 0; i < len(p); i++ {
		c := p[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		if i+1 < len(p) && isMeta(p[i+1]) {
			b.WriteByte(c)
			b.WriteByte(p[i+1])
			i++
			continue
		}
		b.WriteByte('/')
	}
	return b.String()
}

func toRegexp(src string) string {
	alts := Expand(src)
	var b strings.Builder
	b.WriteString("^(?:")
	for i, alt := range alts {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteString(translate(alt))
	}
	b.WriteString(")$")
	return b.String()
}

// translate converts one brace-free pattern to a regular expression body.
func translate(p string) string {
	var b strings.Builder
	n := len(p)
	for i := 0; i < n; i++ {
		c := p[i]
		switch c {
		case '\\':
			if i+1 < n {
				i++
				b.WriteString(regexp.QuoteMeta(p[i : i+1]))
			} else {
				b.WriteString(`\\`)
			}
		case '/':
			if p[i+1:] == "**" {
				b.WriteString("(?:/.*)?")
				return b.String()
			}
			b.WriteByte('/')
		case '*':
			j := i
			for j < n && p[j] == '*' {
				j++
			}
			if j-i == 1 {
				b.WriteString("[^/]*")
				continue
			}
			segStart := i == 0 || p[i-1] == '/'
			if segStart && j < n && p[j] == '/' {
				b.WriteString("(?:.*/)?")
				i = j
				continue
			}
			b.WriteString(".*")
			i = j - 1
		case '?':
			b.WriteString("[^/]")
		case '[':
			if cls, end, ok := translateClass(p, i); ok {
				b.WriteString(cls)
				i = end
				continue
			}
			b.WriteString(`\[`)
		default:
			b.WriteString(regexp.QuoteMeta(p[i : i+1]))
		}
	}
	return b.String()
}

// translateClass converts the bracket expression starting at p[start] and
// returns the index of its closing ']'. It reports false for an
// unterminated or empty class.
func translateClass(p string, start int) (string, int, bool) {
	i := start + 1
	negate := false
	if i < len(p) && (p[i] == '!' || p[i] == '^') {
		negate = true
		i++
	}

	var b strings.Builder
	first := true
	for ; i < len(p); i++ {
		c := p[i]
		switch {
		case c == ']' && !first:
			if negate {
				return "[^/" + b.String() + "]", i, true
			}
			return "[" + b.String() + "]", i, true
		case c == '\\' && i+1 < len(p):
			i++
			writeClassChar(&b, p[i])
		case c == '-':
			if !first && i+1 < len(p) && p[i+1] != ']' {
				b.WriteByte('-')
			} else {
				b.WriteString(`\-`)
			}
		default:
			writeClassChar(&b, c)
		}
		first = false
	}
	return "", 0, false
}

func writeClassChar(b *strings.Builder, c byte) {
	if c < 0x80 && !isAlnum(c) {
		b.WriteByte('\\')
	}
	b.WriteByte(c)
}

func isAlnum(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
