package vm

// Table is the growable ordered container of Values. It is the language's
// primary data structure and the argument-list convention for every call.
//
// An owned table holds one reference to each live element in data[:n] and
// gives it back exactly once: when the element is removed, when the table
// is cleared, or when the table itself is freed.
//
// A borrowed table is a fixed-length view over a slice owned by the caller
// (register windows, literal pools). It holds no references, is never freed,
// and is read-only to the container operations. It can never be wrapped as
// a Value, so it cannot be stored anywhere that outlives its backing slice.
type Table struct {
	hdr    Refs
	data   []Value // len(data) is the capacity
	n      int
	broken bool // a failed growth released the contents
}

// MinCapacity is the smallest capacity NewTable allocates.
const MinCapacity = 2

var emptyTable = &Table{hdr: Refs{mode: Static}}

// EmptyTable returns the shared empty table. It has capacity 0, reports a
// reference count of 1, and is never mutated or freed.
func EmptyTable() *Table {
	return emptyTable
}

// NewTable creates an owned table with room for capacity elements (at least
// MinCapacity). Returns nil if the allocation limit forbids it.
func NewTable(capacity int) *Table {
	if capacity < MinCapacity {
		capacity = MinCapacity
	}
	if !allocationAllowed(capacity) {
		return nil
	}
	return &Table{
		hdr:  ownedRefs(),
		data: make([]Value, capacity),
	}
}

// Borrow creates a borrowed view over values. The view's length and
// capacity are len(values) and its reference count is 0 forever.
func Borrow(values []Value) *Table {
	return &Table{
		hdr:  Refs{mode: Borrowed},
		data: values[:len(values):len(values)],
		n:    len(values),
	}
}

// Args builds a borrowed argument table over vs.
func Args(vs ...Value) *Table {
	return Borrow(vs)
}

func (t *Table) refs() *Refs { return &t.hdr }

// free releases every live element, then drops the buffer.
func (t *Table) free() {
	for i := 0; i < t.n; i++ {
		Release(&t.data[i])
		t.data[i] = Nil
	}
	t.data = nil
	t.n = 0
}

// TableValue wraps t as a Value. Borrowed views and nil yield Undefined.
func TableValue(t *Table) Value {
	if t == nil || t.hdr.mode == Borrowed {
		return Undefined
	}
	return wrap(KindTable, t)
}

// AsTable returns the table v points at, or nil if v is not a live table.
func AsTable(v Value) *Table {
	if v.kind != KindTable {
		return nil
	}
	t, _ := v.obj.(*Table)
	if t == nil || t.hdr.freed {
		return nil
	}
	return t
}

// IsTable returns true if v is a live table.
func IsTable(v Value) bool {
	return AsTable(v) != nil
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

// Len returns the number of live elements. A nil table has none.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return t.n
}

// Cap returns the number of allocated slots.
func (t *Table) Cap() int {
	if t == nil {
		return 0
	}
	return len(t.data)
}

// Ownership returns the table's ownership mode.
func (t *Table) Ownership() Ownership {
	return t.hdr.mode
}

// RefCount returns the table's observable reference count.
func (t *Table) RefCount() int {
	return t.hdr.Count()
}

// Usable returns false once the table has been freed or a growth failure
// has emptied it.
func (t *Table) Usable() bool {
	return t != nil && !t.hdr.freed && !t.broken
}

// At returns the element at index without touching its count. Negative
// indexes count from the tail. Out of range yields Undefined.
func (t *Table) At(index int) Value {
	if t == nil {
		return Undefined
	}
	if index < 0 {
		index += t.n
	}
	if index < 0 || index >= t.n {
		return Undefined
	}
	return t.data[index]
}

// Values returns a copy of the live elements. Counts are not touched.
func (t *Table) Values() []Value {
	if t == nil {
		return nil
	}
	out := make([]Value, t.n)
	copy(out, t.data[:t.n])
	return out
}

// mutable reports whether the container operations may change t.
func (t *Table) mutable() bool {
	return t.Usable() && t.hdr.mode == Owned
}

// ---------------------------------------------------------------------------
// Container operations
// ---------------------------------------------------------------------------

// grow extends the buffer by half its size. On failure the table gives back
// every element it holds, drops its buffer and becomes unusable.
func (t *Table) grow() bool {
	size := len(t.data) + len(t.data)/2
	if size <= len(t.data) || !allocationAllowed(size) {
		t.abandon()
		return false
	}
	data := make([]Value, size)
	copy(data, t.data[:t.n])
	t.data = data
	return true
}

func (t *Table) abandon() {
	for i := 0; i < t.n; i++ {
		Release(&t.data[i])
	}
	t.data = nil
	t.n = 0
	t.broken = true
}

// Append stores v at the tail and retains it. Returns the table, or
// Undefined if t cannot be mutated or could not grow.
func (t *Table) Append(v Value) Value {
	if !t.mutable() {
		return Undefined
	}
	if t.n == len(t.data) && !t.grow() {
		return Undefined
	}
	t.data[t.n] = v
	Retain(&t.data[t.n])
	t.n++
	return TableValue(t)
}

// Insert stores v at index, shifting [index, len) one slot right, and
// retains it. index == len appends; index > len leaves the table unchanged
// and still returns it. Negative indexes yield Undefined.
func (t *Table) Insert(index int, v Value) Value {
	if !t.mutable() || index < 0 {
		return Undefined
	}
	if index > t.n {
		return TableValue(t)
	}
	if index == t.n {
		return t.Append(v)
	}
	if t.n == len(t.data) && !t.grow() {
		return Undefined
	}
	for i := t.n; i > index; i-- {
		t.data[i] = t.data[i-1]
	}
	t.data[index] = v
	Retain(&t.data[index])
	t.n++
	return TableValue(t)
}

// Delete removes the element at index and shifts the tail left. Negative
// indexes count from the tail. The removed element is returned without
// being released: the caller now owns that reference. Out of range yields
// Undefined and leaves the table unchanged.
func (t *Table) Delete(index int) Value {
	if !t.mutable() {
		return Undefined
	}
	if index < 0 {
		index += t.n
	}
	if index < 0 || index >= t.n {
		return Undefined
	}
	removed := t.data[index]
	for i := index; i < t.n-1; i++ {
		t.data[i] = t.data[i+1]
	}
	t.n--
	t.data[t.n] = Nil
	return removed
}

// Clear releases every element and resets its slot to Undefined. The
// capacity is kept.
func (t *Table) Clear() Value {
	if !t.mutable() {
		return Undefined
	}
	for i := 0; i < t.n; i++ {
		Release(&t.data[i])
		t.data[i] = Undefined
	}
	t.n = 0
	return Undefined
}
