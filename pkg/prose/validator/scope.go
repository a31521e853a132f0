package validator

// binding records one variable declaration.
type binding struct {
	name         string
	isConst      bool
	declaredLine int
}

// scope is one frame of the scope chain: a flat name table. Frames are
// pushed on entering a block-introducing construct and popped on leaving
// it, so only the path from program root to the current node is ever live.
type scope struct {
	vars map[string]*binding
}

// scopeStack is the scope chain as an explicit stack. Lookup walks from the
// innermost frame outward, which reproduces parent-linked traversal without
// back-references.
type scopeStack struct {
	frames []*scope
}

func newScopeStack() *scopeStack {
	s := &scopeStack{}
	s.push() // program scope
	return s
}

func (s *scopeStack) push() {
	s.frames = append(s.frames, &scope{vars: make(map[string]*binding)})
}

func (s *scopeStack) pop() {
	if len(s.frames) > 1 {
		s.frames = s.frames[:len(s.frames)-1]
	}
}

func (s *scopeStack) current() *scope {
	return s.frames[len(s.frames)-1]
}

// declare adds a binding to the current frame. It does not check for
// collisions; callers decide between duplicate errors and shadow warnings.
func (s *scopeStack) declare(b *binding) {
	s.current().vars[b.name] = b
}

// lookupLocal finds a binding in the current frame only.
func (s *scopeStack) lookupLocal(name string) *binding {
	return s.current().vars[name]
}

// lookup finds a binding anywhere on the chain, innermost first.
func (s *scopeStack) lookup(name string) *binding {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if b, ok := s.frames[i].vars[name]; ok {
			return b
		}
	}
	return nil
}

// lookupOuter finds a binding in any frame except the current one. Used to
// distinguish a permitted shadow (warning) from a same-scope duplicate
// (error).
func (s *scopeStack) lookupOuter(name string) *binding {
	for i := len(s.frames) - 2; i >= 0; i-- {
		if b, ok := s.frames[i].vars[name]; ok {
			return b
		}
	}
	return nil
}

// visibleNames returns every name reachable from the current frame, for
// typo suggestions.
func (s *scopeStack) visibleNames() []string {
	seen := make(map[string]bool)
	var names []string
	for i := len(s.frames) - 1; i >= 0; i-- {
		for name := range s.frames[i].vars {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return names
}
