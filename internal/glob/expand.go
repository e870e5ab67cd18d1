package glob

import (
	"fmt"
	"strconv"
	"strings"
)

// maxRangeSize caps how many literals a single {a..b} range may produce.
// Larger ranges are left as literal text.
const maxRangeSize = 1 << 14

// maxExpansions caps the total number of patterns one Expand call may
// produce. A pattern that would exceed it is returned unexpanded.
const maxExpansions = 1 << 14

// Expand performs brace expansion on pattern and returns the resulting
// brace-free patterns in order. Alternation groups ({a,b}), numeric ranges
// ({1..3}, {01..10}, {1..9..2}) and single-character ranges ({a..e}) are
// supported; groups nest and may repeat. Reversed ranges count down, so
// {3..1} yields 3, 2, 1. A brace group that is neither an alternation nor a
// valid range is kept as literal text. Escaped braces and commas (\{ \} \,)
// are never treated as syntax and keep their backslash. A pattern whose
// expansion would exceed maxExpansions is returned as is.
func Expand(pattern string) []string {
	out, ok := expand(pattern, maxExpansions)
	if !ok {
		return []string{pattern}
	}
	return out
}

// expand reports false once more than limit patterns would be produced.
func expand(pattern string, limit int) ([]string, bool) {
	start := 0
	for {
		open := indexUnescaped(pattern, '{', start)
		if open < 0 {
			return []string{pattern}, true
		}
		end := matchingBrace(pattern, open)
		if end < 0 {
			start = open + 1
			continue
		}
		alts, ok := braceAlternatives(pattern[open+1 : end])
		if !ok {
			start = open + 1
			continue
		}

		prefix, suffix := pattern[:open], pattern[end+1:]
		if len(alts) > limit {
			return nil, false
		}
		out := make([]string, 0, len(alts))
		for _, alt := range alts {
			sub, ok := expand(prefix+alt+suffix, limit-len(out))
			if !ok {
				return nil, false
			}
			out = append(out, sub...)
			if len(out) > limit {
				return nil, false
			}
		}
		return out, true
	}
}

func indexUnescaped(s string, ch byte, from int) int {
	for i := from; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case ch:
			return i
		}
	}
	return -1
}

func matchingBrace(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// braceAlternatives splits the body of a brace group. It reports false when
// the body is neither a comma list nor a range.
func braceAlternatives(body string) ([]string, bool) {
	parts := splitTopLevel(body)
	if len(parts) > 1 {
		return parts, true
	}
	return expandRange(body)
}

func splitTopLevel(body string) []string {
	var (
		parts []string
		depth int
		last  int
	)
	for i := 0; i < len(body); i++ {
		switch body[i] {
		case '\\':
			i++
		case '{':
			depth++
		case '}':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, body[last:i])
				last = i + 1
			}
		}
	}
	return append(parts, body[last:])
}

func expandRange(body string) ([]string, bool) {
	fields := strings.Split(body, "..")
	if len(fields) != 2 && len(fields) != 3 {
		return nil, false
	}

	step := uint64(1)
	if len(fields) == 3 {
		n, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, false
		}
		if n != 0 {
			step = magnitude(n)
		}
	}

	lo, hi := fields[0], fields[1]
	if a, errA := strconv.Atoi(lo); errA == nil {
		b, errB := strconv.Atoi(hi)
		if errB != nil {
			return nil, false
		}
		return numericRange(a, b, step, padWidth(lo, hi))
	}

	if len(lo) == 1 && len(hi) == 1 && isRangeChar(lo[0]) && isRangeChar(hi[0]) {
		return charRange(lo[0], hi[0], step)
	}
	return nil, false
}

// rangeCount returns the number of values from a to b in steps of step,
// or false when that exceeds maxRangeSize. The span is computed unsigned
// so endpoints at the int limits cannot overflow.
func rangeCount(a, b int, step uint64) (int, bool) {
	var span uint64
	if b >= a {
		span = uint64(b) - uint64(a)
	} else {
		span = uint64(a) - uint64(b)
	}
	n := span / step
	if n >= maxRangeSize {
		return 0, false
	}
	return int(n) + 1, true
}

func numericRange(a, b int, step uint64, width int) ([]string, bool) {
	count, ok := rangeCount(a, b, step)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, count)
	for i, v := 0, a; i < count; i++ {
		if width > 0 {
			out = append(out, fmt.Sprintf("%0*d", width, v))
		} else {
			out = append(out, strconv.Itoa(v))
		}
		// Wrapping arithmetic lands on the right value: every value
		// produced lies between a and b.
		if a > b {
			v -= int(step)
		} else {
			v += int(step)
		}
	}
	return out, true
}

func charRange(a, b byte, step uint64) ([]string, bool) {
	count, ok := rangeCount(int(a), int(b), step)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, count)
	for i := 0; i < count; i++ {
		v := uint64(i) * step
		c := a + byte(v)
		if a > b {
			c = a - byte(v)
		}
		if isMeta(c) {
			out = append(out, `\`+string(c))
			continue
		}
		out = append(out, string(c))
	}
	return out, true
}

// padWidth returns the zero-padding width implied by the range endpoints,
// or 0 when neither endpoint has a leading zero.
func padWidth(lo, hi string) int {
	if !zeroPadded(lo) && !zeroPadded(hi) {
		return 0
	}
	return max(len(lo), len(hi))
}

func zeroPadded(s string) bool {
	s = strings.TrimPrefix(s, "-")
	return len(s) > 1 && s[0] == '0'
}

func isRangeChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// magnitude returns |n| as uint64, which also holds the math.MinInt case.
func magnitude(n int) uint64 {
	if n < 0 {
		return uint64(-(n + 1)) + 1
	}
	return uint64(n)
}
