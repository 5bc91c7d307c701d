// Completion: 100% - Scope chain complete
package main

// Scope is a mutable name->Box mapping linked to a parent scope, per spec
// §4.4 and the GLOSSARY. The root (module) scope has a nil parent;
// invariant 4 requires every other scope to have a non-nil parent.
type Scope struct {
	dict      FixedDict
	parent    *Scope
	doc       string
	constants map[string]bool // names bound via `const` in THIS scope
}

// NewScope creates a child scope of parent. A nil parent marks the root.
func NewScope(parent *Scope, doc string) *Scope {
	return &Scope{
		dict:      FixedDict{buckets: newFixedDictBuckets(16)},
		parent:    parent,
		doc:       doc,
		constants: make(map[string]bool),
	}
}

// Lookup walks the parent chain for name.
func (s *Scope) Lookup(name string) (Box, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if v, ok := cur.dict.Find(NewStrView(name)); ok {
			return v, true
		}
	}
	return Box{}, false
}

// Has is Lookup discarding the value.
func (s *Scope) Has(name string) bool {
	_, ok := s.Lookup(name)
	return ok
}

// DefineLocal writes into the local dict, shadowing any parent binding.
func (s *Scope) DefineLocal(name string, value Box) {
	s.dict.Insert(NewStrView(name), value)
}

// DefineConst is DefineLocal plus marking the name immutable in this scope,
// enforcing the constant-immutability invariant in spec §8.
func (s *Scope) DefineConst(name string, value Box) {
	s.DefineLocal(name, value)
	s.constants[name] = true
}

// IsConstLocal reports whether name was bound via `const` in this exact
// scope (not an ancestor).
func (s *Scope) IsConstLocal(name string) bool { return s.constants[name] }

// Assign updates the nearest scope in the chain that already defines name,
// used by mutable rebinding. It returns false if name is unbound anywhere
// in the chain, which callers turn into an undefined-variable error.
func (s *Scope) Assign(name string, value Box) bool {
	for cur := s; cur != nil; cur = cur.parent {
		if _, ok := cur.dict.Find(NewStrView(name)); ok {
			cur.dict.Insert(NewStrView(name), value)
			return true
		}
	}
	return false
}

// Merge copies every local entry of src into dst's local dict; overwrites
// are allowed, per spec §4.4 ("merging two scopes").
func (dst *Scope) Merge(src *Scope) {
	src.dict.each(func(k StrView, v Box) { dst.dict.Insert(k, v) })
}

// Root walks to the outermost ancestor, the module scope.
func (s *Scope) Root() *Scope {
	cur := s
	for cur.parent != nil {
		cur = cur.parent
	}
	return cur
}
