package vm

// String is an immutable byte buffer.
//
// NewStringZero hands out a zeroed buffer that its creator fills through
// Bytes before the string is shared; after that it is never written.
type String struct {
	hdr  Refs
	data []byte
}

func (s *String) refs() *Refs { return &s.hdr }

func (s *String) free() { s.data = nil }

// NewString creates an owned string holding a copy of text.
func NewString(text string) *String {
	return &String{hdr: ownedRefs(), data: []byte(text)}
}

// NewStringZero creates an owned string of n zero bytes.
func NewStringZero(n int) *String {
	if n < 0 {
		n = 0
	}
	return &String{hdr: ownedRefs(), data: make([]byte, n)}
}

// StringValue wraps s as a Value.
func StringValue(s *String) Value {
	if s == nil {
		return Undefined
	}
	return wrap(KindString, s)
}

// AsString returns the string v points at, or nil if v is not a live string.
func AsString(v Value) *String {
	if v.kind != KindString {
		return nil
	}
	s, _ := v.obj.(*String)
	if s == nil || s.hdr.freed {
		return nil
	}
	return s
}

// Bytes returns the underlying buffer.
func (s *String) Bytes() []byte {
	return s.data
}

// Len returns the length in bytes.
func (s *String) Len() int {
	return len(s.data)
}

func (s *String) String() string {
	return string(s.data)
}

func init() {
	t := registerType(&Type{
		Kind:    KindString,
		retain:  retainRecord,
		release: releaseRecord,
		stringify: func(self *Value, indent int) *String {
			s := AsString(*self)
			if s == nil {
				return nil
			}
			return indented(indent, string(s.data))
		},
	})
	t.Methods.AddMethod(Selectors, "tostring", tostring)
	t.Methods.AddMethod(Selectors, "len", func(self *Value, args *Table) Value {
		if self == nil {
			return Undefined
		}
		s := AsString(*self)
		if s == nil {
			return Undefined
		}
		return NumberValue(float64(s.Len()))
	})
}
