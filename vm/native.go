package vm

// Native is a callable record backed by a Go Method. It is how the
// interpreter plugs functions into the value model.
type Native struct {
	hdr  Refs
	name string
	fn   Method
}

func (n *Native) refs() *Refs { return &n.hdr }

func (n *Native) free() { n.fn = nil }

// NewNative creates an owned native function.
func NewNative(name string, fn Method) *Native {
	return &Native{hdr: ownedRefs(), name: name, fn: fn}
}

// NativeValue wraps n as a Value.
func NativeValue(n *Native) Value {
	if n == nil {
		return Undefined
	}
	return wrap(KindNative, n)
}

// AsNative returns the native v points at, or nil.
func AsNative(v Value) *Native {
	if v.kind != KindNative {
		return nil
	}
	n, _ := v.obj.(*Native)
	if n == nil || n.hdr.freed {
		return nil
	}
	return n
}

// Name returns the function's name.
func (n *Native) Name() string {
	return n.name
}

// Call invokes the function with self as receiver.
func (n *Native) Call(self *Value, args *Table) Value {
	if n == nil || n.fn == nil {
		return Undefined
	}
	return n.fn(self, args)
}

func init() {
	t := registerType(&Type{
		Kind:    KindNative,
		retain:  retainRecord,
		release: releaseRecord,
		stringify: func(self *Value, indent int) *String {
			n := AsNative(*self)
			if n == nil {
				return nil
			}
			return indented(indent, "<native "+n.name+">")
		},
	})

	t.Methods.AddMethod(Selectors, "call", func(self *Value, args *Table) Value {
		if self == nil {
			return Undefined
		}
		return AsNative(*self).Call(self, args)
	})

	t.Methods.AddMethod(Selectors, "tostring", tostring)
}
