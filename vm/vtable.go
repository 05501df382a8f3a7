package vm

// MethodTable holds the message table for one kind.
//
// Methods are stored in a slice indexed by selector ID, so a lookup is a
// bounds check and an index.
type MethodTable struct {
	methods []Method
}

// NewMethodTable creates an empty method table.
func NewMethodTable() *MethodTable {
	return &MethodTable{methods: make([]Method, 0, 8)}
}

// Lookup finds a method by selector ID. Returns nil if there is none.
func (mt *MethodTable) Lookup(selector int) Method {
	if selector >= 0 && selector < len(mt.methods) {
		return mt.methods[selector]
	}
	return nil
}

// AddMethod adds or replaces the method for name.
func (mt *MethodTable) AddMethod(selectors *SelectorTable, name string, method Method) {
	selector := selectors.Intern(name)
	if selector >= len(mt.methods) {
		grown := make([]Method, selector+1)
		copy(grown, mt.methods)
		mt.methods = grown
	}
	mt.methods[selector] = method
}

// HasMethod returns true if the table has a method for selector.
func (mt *MethodTable) HasMethod(selector int) bool {
	return mt.Lookup(selector) != nil
}

// Names returns the message names this table answers, in selector order.
func (mt *MethodTable) Names(selectors *SelectorTable) []string {
	var names []string
	for id, m := range mt.methods {
		if m != nil {
			names = append(names, selectors.Name(id))
		}
	}
	return names
}

// ---------------------------------------------------------------------------
// Types
// ---------------------------------------------------------------------------

// Type is the dispatch identity of a kind. It bundles the four mandatory
// methods the runtime calls directly: Dispatch, Retain, Release and
// Stringify. Retain and Release may be nil for inline kinds.
type Type struct {
	Kind    Kind
	Methods *MethodTable

	retain    func(self *Value)
	release   func(self *Value)
	stringify func(self *Value, indent int) *String
}

var types [numKinds]*Type

// registerType installs t as the dispatch identity for its kind.
func registerType(t *Type) *Type {
	if t.Methods == nil {
		t.Methods = NewMethodTable()
	}
	types[t.Kind] = t
	return t
}

// TypeOf returns the dispatch identity of v, or nil for Nil.
func TypeOf(v Value) *Type {
	if v.kind >= numKinds {
		return nil
	}
	return types[v.kind]
}

// Dispatch resolves a message name against this type's method table.
func (t *Type) Dispatch(self *Value, message string) Method {
	if m := t.Methods.Lookup(Selectors.Lookup(message)); m != nil {
		return m
	}
	return Absent
}

// Responds returns true if the type has a method for message.
func (t *Type) Responds(message string) bool {
	return t.Methods.HasMethod(Selectors.Lookup(message))
}

// Dispatch resolves message for self. The message is interned text.
// A missing receiver, a Nil receiver or an unknown message yield Absent.
func Dispatch(self *Value, message *String) Method {
	if message == nil {
		return Absent
	}
	return DispatchName(self, string(message.data))
}

// DispatchName is Dispatch for a Go string message name.
func DispatchName(self *Value, message string) Method {
	if self == nil {
		return Absent
	}
	t := TypeOf(*self)
	if t == nil {
		return Absent
	}
	return t.Dispatch(self, message)
}

// Send resolves message for self and invokes it with args.
func Send(self *Value, message string, args *Table) Value {
	return DispatchName(self, message)(self, args)
}
