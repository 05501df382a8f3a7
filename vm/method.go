package vm

// Method is a callable resolved by dispatch.
//
// self is the receiver and may be nil. args is the argument table, usually a
// borrowed view over the caller's registers, and may also be nil. Methods
// validate their own arguments and return Undefined on malformed input.
type Method func(self *Value, args *Table) Value

// Absent is returned by dispatch when a message is not recognised.
// Invoking it yields Undefined.
func Absent(self *Value, args *Table) Value {
	return Undefined
}

// CheckArg reports whether args has an element at index and that element is
// of kind k.
func CheckArg(args *Table, index int, k Kind) bool {
	if index < 0 || index >= args.Len() {
		return false
	}
	return args.data[index].kind == k
}
