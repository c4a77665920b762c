package objhost

// Namespace is a bag of named members. The global namespace is what the
// guest sees as the root object; nested namespaces are ordinary objects.
type Namespace struct {
	members map[string]any
	order   []string
}

// NewNamespace creates an empty namespace.
func NewNamespace() *Namespace {
	return &Namespace{members: make(map[string]any)}
}

// Set defines or replaces member name.
func (n *Namespace) Set(name string, v any) {
	if _, ok := n.members[name]; !ok {
		n.order = append(n.order, name)
	}
	n.members[name] = v
}

// Lookup returns member name.
func (n *Namespace) Lookup(name string) (any, bool) {
	v, ok := n.members[name]
	return v, ok
}

// Names returns member names in definition order.
func (n *Namespace) Names() []string {
	return append([]string(nil), n.order...)
}

// Class is a constructible member. Constructor calls invoke New, which
// must be a function returning the new object and optionally an error.
type Class struct {
	New  any
	Name string
}

// NewClass wraps a constructor function.
func NewClass(name string, ctor any) *Class {
	return &Class{Name: name, New: ctor}
}
