package vm

// Reference is a shared, mutable cell bound to one Value. It owns one
// reference to its target.
type Reference struct {
	hdr    Refs
	target Value
}

func (r *Reference) refs() *Refs { return &r.hdr }

func (r *Reference) free() {
	Release(&r.target)
	r.target = Nil
}

// NewReference creates an owned reference bound to target, retaining it.
func NewReference(target Value) *Reference {
	r := &Reference{hdr: ownedRefs(), target: target}
	Retain(&r.target)
	return r
}

// ReferenceValue wraps r as a Value.
func ReferenceValue(r *Reference) Value {
	if r == nil {
		return Undefined
	}
	return wrap(KindReference, r)
}

// AsReference returns the reference v points at, or nil.
func AsReference(v Value) *Reference {
	if v.kind != KindReference {
		return nil
	}
	r, _ := v.obj.(*Reference)
	if r == nil || r.hdr.freed {
		return nil
	}
	return r
}

// Target returns the bound value without touching its count.
func (r *Reference) Target() Value {
	return r.target
}

// Bind retains v, stores it, and releases the previous target.
func (r *Reference) Bind(v Value) {
	old := r.target
	r.target = v
	Retain(&r.target)
	Release(&old)
}

func init() {
	t := registerType(&Type{
		Kind:    KindReference,
		retain:  retainRecord,
		release: releaseRecord,
		stringify: func(self *Value, indent int) *String {
			r := AsReference(*self)
			if r == nil {
				return nil
			}
			inner := Stringify(&r.target, 0)
			if inner == nil {
				return nil
			}
			out := indented(indent, "&"+inner.String())
			iv := StringValue(inner)
			Release(&iv)
			return out
		},
	})

	t.Methods.AddMethod(Selectors, "get", func(self *Value, args *Table) Value {
		if self == nil {
			return Undefined
		}
		r := AsReference(*self)
		if r == nil {
			return Undefined
		}
		return r.target
	})

	// set: value
	t.Methods.AddMethod(Selectors, "set", func(self *Value, args *Table) Value {
		if self == nil || args.Len() < 1 {
			return Undefined
		}
		r := AsReference(*self)
		if r == nil {
			return Undefined
		}
		r.Bind(args.data[0])
		return *self
	})

	t.Methods.AddMethod(Selectors, "tostring", tostring)
}
