package vm

import (
	"fmt"
	"testing"
)

// numbers builds an owned table holding 0..n-1.
func numbers(t *testing.T, n int) *Table {
	t.Helper()
	tbl := NewTable(0)
	for i := 0; i < n; i++ {
		if got := tbl.Append(NumberValue(float64(i))); AsTable(got) != tbl {
			t.Fatalf("Append(%d) failed", i)
		}
	}
	return tbl
}

func floats(tbl *Table) []float64 {
	var out []float64
	for _, v := range tbl.Values() {
		out = append(out, AsNumber(v))
	}
	return out
}

func sameFloats(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ---------------------------------------------------------------------------
// Construction
// ---------------------------------------------------------------------------

func TestNewTableMinimumCapacity(t *testing.T) {
	for _, c := range []int{-1, 0, 1, 2} {
		tbl := NewTable(c)
		if tbl.Cap() != MinCapacity {
			t.Errorf("NewTable(%d).Cap() = %d, want %d", c, tbl.Cap(), MinCapacity)
		}
		if tbl.Len() != 0 || tbl.RefCount() != 1 || tbl.Ownership() != Owned {
			t.Errorf("NewTable(%d) = len %d, count %d, %v", c, tbl.Len(), tbl.RefCount(), tbl.Ownership())
		}
	}
	if NewTable(17).Cap() != 17 {
		t.Error("NewTable(17) should keep the requested capacity")
	}
}

func TestEmptyTableSingleton(t *testing.T) {
	e := EmptyTable()
	if e != EmptyTable() {
		t.Fatal("EmptyTable should be a singleton")
	}
	if e.Cap() != 0 || e.Len() != 0 || e.RefCount() != 1 || e.Ownership() != Static {
		t.Errorf("empty table = cap %d, len %d, count %d, %v", e.Cap(), e.Len(), e.RefCount(), e.Ownership())
	}

	ev := TableValue(e)
	for i := 0; i < 5; i++ {
		Release(&ev)
	}
	Retain(&ev)
	if !e.Usable() || e.RefCount() != 1 {
		t.Error("lifetime calls must not touch the empty table")
	}
	if got := e.Append(NumberValue(1)); !got.IsUndefined() {
		t.Error("Append on the empty table should be rejected")
	}
	if got := Send(&ev, "insert", Args(NumberValue(0), NumberValue(1))); !got.IsUndefined() {
		t.Error("insert on the empty table should be rejected")
	}
	if e.Len() != 0 || e.Cap() != 0 {
		t.Error("empty table was mutated")
	}
}

func TestBorrowedView(t *testing.T) {
	regs := []Value{NumberValue(1), NumberValue(2), NumberValue(3)}
	b := Borrow(regs)

	if b.Len() != 3 || b.Cap() != 3 || b.RefCount() != 0 || b.Ownership() != Borrowed {
		t.Fatalf("borrowed view = len %d, cap %d, count %d", b.Len(), b.Cap(), b.RefCount())
	}
	if got := TableValue(b); !got.IsUndefined() {
		t.Error("a borrowed view must not become a Value")
	}

	regs[1] = NumberValue(20)
	if AsNumber(b.At(1)) != 20 {
		t.Error("view should alias the caller's slice")
	}

	for _, got := range []Value{
		b.Append(NumberValue(4)),
		b.Insert(0, NumberValue(0)),
		b.Delete(0),
		b.Clear(),
	} {
		if !got.IsUndefined() {
			t.Error("container operations on a view should be rejected")
		}
	}
	if b.Len() != 3 || AsNumber(regs[0]) != 1 {
		t.Error("view was mutated")
	}
}

func TestBorrowedViewIsNeverFreed(t *testing.T) {
	s := NewString("kept")
	sv := StringValue(s)
	b := Borrow([]Value{sv})

	for i := 0; i < 10; i++ {
		if b.refs().release() {
			t.Fatal("release on a borrowed view reported a free")
		}
		b.refs().retain()
	}
	if !b.Usable() || b.RefCount() != 0 || b.Len() != 1 {
		t.Error("borrowed view changed under lifetime calls")
	}
	if RefCount(sv) != 1 {
		t.Errorf("element count = %d, want 1", RefCount(sv))
	}
}

// ---------------------------------------------------------------------------
// Growth
// ---------------------------------------------------------------------------

func TestAppendGrowth(t *testing.T) {
	for _, c := range []int{0, 1, 2, 5} {
		for _, n := range []int{0, 1, 2, 3, 10, 100} {
			t.Run(fmt.Sprintf("cap%d/n%d", c, n), func(t *testing.T) {
				tbl := NewTable(c)
				for i := 0; i < n; i++ {
					tbl.Append(NumberValue(float64(i)))
					if tbl.Cap() < tbl.Len() {
						t.Fatalf("cap %d < len %d", tbl.Cap(), tbl.Len())
					}
				}
				if tbl.Len() != n {
					t.Fatalf("len = %d, want %d", tbl.Len(), n)
				}
				for i := 0; i < n; i++ {
					if AsNumber(tbl.At(i)) != float64(i) {
						t.Fatalf("At(%d) = %v", i, AsNumber(tbl.At(i)))
					}
				}
			})
		}
	}
}

func TestGrowthFactor(t *testing.T) {
	tbl := NewTable(2)
	want := []int{2, 2, 2, 3, 4, 6, 6, 9, 9, 9}
	for i, w := range want {
		if tbl.Cap() != w {
			t.Fatalf("after %d appends cap = %d, want %d", i, tbl.Cap(), w)
		}
		tbl.Append(NumberValue(float64(i)))
	}
}

func TestGrowthFailure(t *testing.T) {
	defer SetLimits(SetLimits(Limits{MaxCapacity: 3}))

	tbl := NewTable(2)
	tv := TableValue(tbl)
	strs := make([]Value, 3)
	for i := range strs {
		strs[i] = StringValue(NewString(fmt.Sprint(i)))
		if got := tbl.Append(strs[i]); got.IsUndefined() {
			t.Fatalf("append %d within the limit failed", i)
		}
	}
	if tbl.Cap() != 3 {
		t.Fatalf("cap = %d, want 3", tbl.Cap())
	}

	// 3 + 3/2 = 4 exceeds the limit.
	if got := tbl.Append(NumberValue(9)); !got.IsUndefined() {
		t.Fatal("append past the limit should fail")
	}
	if tbl.Usable() {
		t.Error("table should be unusable after a failed growth")
	}
	for i, s := range strs {
		if RefCount(s) != 1 {
			t.Errorf("element %d count = %d, want 1", i, RefCount(s))
		}
	}
	if got := tbl.Append(NumberValue(1)); !got.IsUndefined() {
		t.Error("a broken table should reject appends")
	}

	// Freeing the broken table must not release the elements again.
	Release(&tv)
	for i, s := range strs {
		if RefCount(s) != 1 {
			t.Errorf("element %d count after free = %d, want 1", i, RefCount(s))
		}
	}
}

func TestNewTableOverLimit(t *testing.T) {
	defer SetLimits(SetLimits(Limits{MaxCapacity: 4}))
	if NewTable(5) != nil {
		t.Error("NewTable above the limit should fail")
	}
	if NewTable(4) == nil {
		t.Error("NewTable at the limit should succeed")
	}
}

// ---------------------------------------------------------------------------
// Insert
// ---------------------------------------------------------------------------

func TestInsertShift(t *testing.T) {
	const l = 5
	for i := 0; i <= l; i++ {
		tbl := numbers(t, l)
		orig := floats(tbl)

		if got := tbl.Insert(i, NumberValue(99)); AsTable(got) != tbl {
			t.Fatalf("Insert(%d) did not return the table", i)
		}
		if tbl.Len() != l+1 {
			t.Fatalf("Insert(%d): len = %d", i, tbl.Len())
		}
		got := floats(tbl)
		want := append(append(append([]float64{}, orig[:i]...), 99), orig[i:]...)
		if !sameFloats(got, want) {
			t.Errorf("Insert(%d) = %v, want %v", i, got, want)
		}
	}
}

func TestInsertIntoFullTable(t *testing.T) {
	tbl := numbers(t, 2)
	if tbl.Cap() != 2 {
		t.Fatalf("cap = %d", tbl.Cap())
	}
	tbl.Insert(0, NumberValue(-1))
	if !sameFloats(floats(tbl), []float64{-1, 0, 1}) {
		t.Errorf("got %v", floats(tbl))
	}
}

func TestInsertRetains(t *testing.T) {
	tbl := numbers(t, 3)
	sv := StringValue(NewString("s"))
	tbl.Insert(1, sv)
	if RefCount(sv) != 2 {
		t.Errorf("count after insert = %d, want 2", RefCount(sv))
	}
}

func TestInsertPastEndIsNoop(t *testing.T) {
	tbl := numbers(t, 4)
	before := tbl.Values()
	capBefore := tbl.Cap()

	got := tbl.Insert(tbl.Len()+5, NumberValue(7))
	if AsTable(got) != tbl {
		t.Error("Insert past the end should return the table")
	}
	after := tbl.Values()
	if len(after) != len(before) || tbl.Cap() != capBefore {
		t.Fatal("Insert past the end changed the table")
	}
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("element %d changed", i)
		}
	}
}

func TestInsertMessageValidation(t *testing.T) {
	tbl := numbers(t, 2)
	tv := TableValue(tbl)
	tests := []struct {
		name string
		args *Table
	}{
		{"no args", nil},
		{"one arg", Args(NumberValue(0))},
		{"string index", Args(StringValue(NewString("0")), NumberValue(1))},
		{"fractional index", Args(NumberValue(0.5), NumberValue(1))},
		{"negative index", Args(NumberValue(-1), NumberValue(1))},
	}
	for _, tt := range tests {
		if got := Send(&tv, "insert", tt.args); !got.IsUndefined() {
			t.Errorf("%s: got %v, want undefined", tt.name, got.Kind())
		}
	}
	if tbl.Len() != 2 {
		t.Errorf("invalid inserts changed the table: %v", tbl)
	}

	if got := Send(&tv, "insert", Args(NumberValue(1), NumberValue(5))); AsTable(got) != tbl {
		t.Fatal("valid insert should return the table")
	}
	if !sameFloats(floats(tbl), []float64{0, 5, 1}) {
		t.Errorf("got %v", floats(tbl))
	}
}

// ---------------------------------------------------------------------------
// Delete
// ---------------------------------------------------------------------------

func TestDeleteShift(t *testing.T) {
	const l = 5
	for i := 0; i < l; i++ {
		tbl := numbers(t, l)
		orig := floats(tbl)

		got := tbl.Delete(i)
		if AsNumber(got) != orig[i] {
			t.Errorf("Delete(%d) returned %v", i, AsNumber(got))
		}
		want := append(append([]float64{}, orig[:i]...), orig[i+1:]...)
		if !sameFloats(floats(tbl), want) {
			t.Errorf("Delete(%d) left %v, want %v", i, floats(tbl), want)
		}
	}
}

func TestDeleteNegativeIndex(t *testing.T) {
	a := numbers(t, 4)
	b := numbers(t, 4)
	if AsNumber(a.Delete(-1)) != AsNumber(b.Delete(b.Len()-1)) {
		t.Error("Delete(-1) should match Delete(len-1)")
	}
	if !sameFloats(floats(a), floats(b)) {
		t.Errorf("tables differ: %v vs %v", floats(a), floats(b))
	}
	if got := a.Delete(-3); AsNumber(got) != 0 {
		t.Errorf("Delete(-3) = %v, want 0", AsNumber(got))
	}
}

func TestDeleteOutOfRange(t *testing.T) {
	tbl := numbers(t, 3)
	for _, i := range []int{3, 10, -4, -100} {
		if got := tbl.Delete(i); !got.IsUndefined() {
			t.Errorf("Delete(%d) = %v, want undefined", i, got.Kind())
		}
	}
	if !sameFloats(floats(tbl), []float64{0, 1, 2}) {
		t.Errorf("out of range deletes changed the table: %v", floats(tbl))
	}
}

func TestDeleteTransfersOwnership(t *testing.T) {
	tbl := NewTable(0)
	sv := StringValue(NewString("owned"))
	tbl.Append(sv)
	Release(&sv) // table is now the only owner

	got := tbl.Delete(0)
	if AsString(got) == nil {
		t.Fatal("removed string should still be alive")
	}
	if RefCount(got) != 1 {
		t.Errorf("removed count = %d, want 1", RefCount(got))
	}
	Release(&got)
	if RefCount(got) != 0 || AsString(got) != nil {
		t.Error("caller's release should free the string")
	}
}

func TestDeleteMessage(t *testing.T) {
	tbl := numbers(t, 3)
	tv := TableValue(tbl)
	if got := Send(&tv, "delete", Args(NumberValue(-1))); AsNumber(got) != 2 {
		t.Errorf("delete -1 = %v", AsNumber(got))
	}
	if got := Send(&tv, "delete", nil); !got.IsUndefined() {
		t.Error("delete without an index should yield undefined")
	}
	if got := Send(&tv, "delete", Args(BoolValue(true))); !got.IsUndefined() {
		t.Error("delete with a boolean index should yield undefined")
	}
	if tbl.Len() != 2 {
		t.Errorf("len = %d, want 2", tbl.Len())
	}
}

// ---------------------------------------------------------------------------
// Append / Clear / Get messages
// ---------------------------------------------------------------------------

func TestAppendMessage(t *testing.T) {
	tbl := NewTable(0)
	tv := TableValue(tbl)
	if got := Send(&tv, "append", nil); !got.IsUndefined() {
		t.Error("append without arguments should yield undefined")
	}
	if got := Send(&tv, "append", EmptyTable()); !got.IsUndefined() {
		t.Error("append with an empty argument table should yield undefined")
	}
	if got := Send(&tv, "append", Args(NumberValue(3), NumberValue(4))); AsTable(got) != tbl {
		t.Fatal("append should return the table")
	}
	if !sameFloats(floats(tbl), []float64{3}) {
		t.Errorf("append should store only the first argument: %v", floats(tbl))
	}
}

func TestClearIdempotent(t *testing.T) {
	tbl := NewTable(0)
	tv := TableValue(tbl)
	sv := StringValue(NewString("x"))
	tbl.Append(sv)
	tbl.Append(sv)
	tbl.Append(NumberValue(1))
	capBefore := tbl.Cap()

	if RefCount(sv) != 3 {
		t.Fatalf("count = %d, want 3", RefCount(sv))
	}

	Send(&tv, "clear", nil)
	if tbl.Len() != 0 || tbl.Cap() != capBefore {
		t.Errorf("after clear: len %d cap %d", tbl.Len(), tbl.Cap())
	}
	if RefCount(sv) != 1 {
		t.Errorf("count after clear = %d, want 1", RefCount(sv))
	}
	for i := 0; i < 3; i++ {
		if !tbl.data[i].IsUndefined() {
			t.Errorf("slot %d not reset to undefined", i)
		}
	}

	tbl.Clear()
	if tbl.Len() != 0 || RefCount(sv) != 1 {
		t.Error("second clear should change nothing")
	}
}

func TestGetAndLen(t *testing.T) {
	tbl := numbers(t, 3)
	tv := TableValue(tbl)
	if got := Send(&tv, "len", nil); AsNumber(got) != 3 {
		t.Errorf("len = %v", AsNumber(got))
	}
	if got := Send(&tv, "get", Args(NumberValue(-1))); AsNumber(got) != 2 {
		t.Errorf("get -1 = %v", AsNumber(got))
	}
	if got := Send(&tv, "get", Args(NumberValue(3))); !got.IsUndefined() {
		t.Error("get out of range should yield undefined")
	}
}

func TestNilTableAccessors(t *testing.T) {
	var tbl *Table
	if tbl.Len() != 0 || tbl.Cap() != 0 || tbl.Usable() || tbl.Values() != nil {
		t.Error("nil table accessors should report empty")
	}
	if !tbl.At(0).IsUndefined() || !tbl.Append(Nil).IsUndefined() {
		t.Error("nil table operations should yield undefined")
	}
	if !TableValue(nil).IsUndefined() {
		t.Error("TableValue(nil) should be undefined")
	}
}
