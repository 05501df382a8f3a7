package vm

// Retain adds an owner to the record v points at. Nil pointers, inline
// values and unmanaged records are left alone.
func Retain(v *Value) {
	if v == nil {
		return
	}
	if t := TypeOf(*v); t != nil && t.retain != nil {
		t.retain(v)
	}
}

// Release drops an owner from the record v points at. When the last owner
// goes away the kind's handler releases everything the record references
// and then drops the record's own storage.
func Release(v *Value) {
	if v == nil {
		return
	}
	if t := TypeOf(*v); t != nil && t.release != nil {
		t.release(v)
	}
}

// MaxRenderDepth bounds how deeply Stringify nests. A table or reference
// that reaches itself hits the bound and fails to render.
const MaxRenderDepth = 1024

var renderDepth int

// Stringify renders v as text, prefixed by indent tabs. Returns nil when v
// cannot be rendered. The result is a fresh owned string.
func Stringify(v *Value, indent int) *String {
	if v == nil {
		return nil
	}
	t := TypeOf(*v)
	if t == nil || t.stringify == nil {
		return nil
	}
	if renderDepth >= MaxRenderDepth {
		return nil
	}
	renderDepth++
	defer func() { renderDepth-- }()
	if indent < 0 {
		indent = 0
	}
	return t.stringify(v, indent)
}

// retainRecord is the Retain handler shared by the heap kinds.
func retainRecord(self *Value) {
	if self.obj != nil {
		self.obj.refs().retain()
	}
}

// releaseRecord is the Release handler shared by the heap kinds.
func releaseRecord(self *Value) {
	if self.obj != nil && self.obj.refs().release() {
		self.obj.free()
		traceFree(self.kind)
	}
}

// indented renders text behind indent tabs.
func indented(indent int, text string) *String {
	s := NewStringZero(indent + len(text))
	for i := 0; i < indent; i++ {
		s.data[i] = '\t'
	}
	copy(s.data[indent:], text)
	return s
}

// tostring is the "tostring" message shared by every renderable kind.
func tostring(self *Value, args *Table) Value {
	s := Stringify(self, 0)
	if s == nil {
		return Undefined
	}
	return StringValue(s)
}
