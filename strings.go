// Completion: 100% - String view module complete
package main

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
	"unicode"
	"unsafe"
)

// StrView is an immutable (pointer, length) view over UTF-8 text. It carries
// no NUL-termination requirement; equality and hashing operate on raw bytes.
//
// A StrView is either backed by a Go string literal, a slice of another
// StrView's bytes (Split/Substring share the source's memory), or bytes
// copied into an Arena by NewArenaString. None of these forms copies on
// read, matching the "immutable pair (pointer, length)" contract.
type StrView struct {
	s string
}

// NewStrView wraps a Go string without copying.
func NewStrView(s string) StrView { return StrView{s: s} }

// NewArenaString copies s into the arena and returns a view over the copy.
// The returned view is valid for as long as the arena is (i.e. until the
// next Reset or FreeUnderlying).
func NewArenaString(a *Arena, s string) StrView {
	if len(s) == 0 {
		return StrView{}
	}
	buf := a.Alloc(len(s))
	copy(buf, s)
	return StrView{s: unsafe.String(&buf[0], len(buf))}
}

func (v StrView) Len() int      { return len(v.s) }
func (v StrView) Empty() bool   { return len(v.s) == 0 }
func (v StrView) String() string { return v.s }

// Equal compares byte content.
func (v StrView) Equal(o StrView) bool { return v.s == o.s }

// Compare orders lexicographically: -1, 0, 1.
func (v StrView) Compare(o StrView) int {
	return strings.Compare(v.s, o.s)
}

// CompareNatural orders the way a human would sort filenames: runs of
// ASCII digits compare as integers rather than character-by-character.
func (v StrView) CompareNatural(o StrView) int {
	a, b := v.s, o.s
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		ca, cb := a[i], b[j]
		if isDigit(ca) && isDigit(cb) {
			ia := i
			for ia < len(a) && isDigit(a[ia]) {
				ia++
			}
			jb := j
			for jb < len(b) && isDigit(b[jb]) {
				jb++
			}
			na := strings.TrimLeft(a[i:ia], "0")
			nb := strings.TrimLeft(b[j:jb], "0")
			if len(na) != len(nb) {
				if len(na) < len(nb) {
					return -1
				}
				return 1
			}
			if na != nb {
				if na < nb {
					return -1
				}
				return 1
			}
			i, j = ia, jb
			continue
		}
		if ca != cb {
			if ca < cb {
				return -1
			}
			return 1
		}
		i++
		j++
	}
	switch {
	case len(a)-i < len(b)-j:
		return -1
	case len(a)-i > len(b)-j:
		return 1
	default:
		return 0
	}
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// Hash computes the FNV-1a 64-bit hash of the view's bytes. This is the
// canonical hash used for dict-key equality (Containers §4.4); it is
// deliberately the stdlib FNV-1a rather than a faster non-cryptographic
// hash, because the testable property in spec §8 ("FixStr_hash(x) ==
// FixStr_hash(y) whenever x and y have identical bytes") pins the
// algorithm, not just its collision behavior.
func (v StrView) Hash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(v.s))
	return h.Sum64()
}

// Substring returns a view sharing the source's backing array.
func (v StrView) Substring(start, end int) StrView {
	if start < 0 {
		start = 0
	}
	if end > len(v.s) {
		end = len(v.s)
	}
	if start >= end {
		return StrView{}
	}
	return StrView{s: v.s[start:end]}
}

// CopyInto copies the view's bytes into the arena and returns a new view
// backed by the copy.
func (v StrView) CopyInto(a *Arena) StrView { return NewArenaString(a, v.s) }

// Split divides the view on every occurrence of sep, returning views that
// share the source's memory (no allocation beyond the slice header).
func (v StrView) Split(sep byte) []StrView {
	parts := strings.Split(v.s, string(sep))
	out := make([]StrView, len(parts))
	for i, p := range parts {
		out[i] = StrView{s: p}
	}
	return out
}

// JoinStrViews concatenates views with sep between them into a freshly
// allocated string (not arena-backed; callers needing arena lifetime should
// wrap with CopyInto).
func JoinStrViews(views []StrView, sep string) StrView {
	parts := make([]string, len(views))
	for i, v := range views {
		parts[i] = v.s
	}
	return StrView{s: strings.Join(parts, sep)}
}

// FormatInto renders a printf-style message into a buffer freshly allocated
// from the arena and returns a view over it.
func FormatInto(a *Arena, format string, args ...any) StrView {
	return NewArenaString(a, fmt.Sprintf(format, args...))
}

func (v StrView) Upper() StrView { return StrView{s: strings.ToUpper(v.s)} }
func (v StrView) Lower() StrView { return StrView{s: strings.ToLower(v.s)} }
func (v StrView) Trim() StrView  { return StrView{s: strings.TrimSpace(v.s)} }

// Find returns the byte offset of the first occurrence of needle, or -1.
func (v StrView) Find(needle string) int { return strings.Index(v.s, needle) }

// ReplaceChar returns a new view with every occurrence of from replaced by to.
func (v StrView) ReplaceChar(from, to byte) StrView {
	if strings.IndexByte(v.s, from) < 0 {
		return v
	}
	b := []byte(v.s)
	for i := range b {
		if b[i] == from {
			b[i] = to
		}
	}
	return StrView{s: string(b)}
}

// IsUpperStart reports whether the view begins with an uppercase letter,
// the lexer's rule for classifying TYPE tokens (§4.5 rule 3).
func (v StrView) IsUpperStart() bool {
	if v.Empty() {
		return false
	}
	r := rune(v.s[0])
	return unicode.IsUpper(r)
}

// sortStrViewsNatural sorts views in the human-friendly order of
// CompareNatural.
func sortStrViewsNatural(views []StrView) {
	sort.Slice(views, func(i, j int) bool { return views[i].CompareNatural(views[j]) < 0 })
}
