package vm

// ---------------------------------------------------------------------------
// Table Primitives
// ---------------------------------------------------------------------------

func init() {
	t := registerType(&Type{
		Kind:      KindTable,
		retain:    retainRecord,
		release:   releaseRecord,
		stringify: stringifyTable,
	})
	m := t.Methods

	// append: value
	m.AddMethod(Selectors, "append", func(self *Value, args *Table) Value {
		tbl := receiverTable(self)
		if tbl == nil || args.Len() < 1 {
			return Undefined
		}
		return tbl.Append(args.data[0])
	})

	// insert: index value
	m.AddMethod(Selectors, "insert", func(self *Value, args *Table) Value {
		tbl := receiverTable(self)
		if tbl == nil || args.Len() < 2 || !CheckArg(args, 0, KindNumber) {
			return Undefined
		}
		index, ok := asIndex(args.data[0])
		if !ok {
			return Undefined
		}
		return tbl.Insert(index, args.data[1])
	})

	// delete: index
	m.AddMethod(Selectors, "delete", func(self *Value, args *Table) Value {
		tbl := receiverTable(self)
		if tbl == nil || !CheckArg(args, 0, KindNumber) {
			return Undefined
		}
		index, ok := asIndex(args.data[0])
		if !ok {
			return Undefined
		}
		return tbl.Delete(index)
	})

	m.AddMethod(Selectors, "clear", func(self *Value, args *Table) Value {
		tbl := receiverTable(self)
		if tbl == nil {
			return Undefined
		}
		return tbl.Clear()
	})

	m.AddMethod(Selectors, "len", func(self *Value, args *Table) Value {
		tbl := receiverTable(self)
		if tbl == nil {
			return Undefined
		}
		return NumberValue(float64(tbl.Len()))
	})

	// get: index -- borrowed copy, count untouched
	m.AddMethod(Selectors, "get", func(self *Value, args *Table) Value {
		tbl := receiverTable(self)
		if tbl == nil || !CheckArg(args, 0, KindNumber) {
			return Undefined
		}
		index, ok := asIndex(args.data[0])
		if !ok {
			return Undefined
		}
		return tbl.At(index)
	})

	m.AddMethod(Selectors, "tostring", tostring)
}

func receiverTable(self *Value) *Table {
	if self == nil {
		return nil
	}
	return AsTable(*self)
}

// stringifyTable renders "[a b c]" behind indent tabs. Elements render at
// indent 0. If any element cannot be rendered the whole render fails.
func stringifyTable(self *Value, indent int) *String {
	t := AsTable(*self)
	if t == nil {
		return nil
	}
	parts := NewTable(t.n)
	if parts == nil {
		return nil
	}
	scratch := TableValue(parts)
	defer Release(&scratch)

	total := len("[]") + indent
	for i := 0; i < t.n; i++ {
		s := Stringify(&t.data[i], 0)
		if s == nil {
			return nil
		}
		sv := StringValue(s)
		parts.Append(sv)
		Release(&sv)
		total += s.Len()
		if i != t.n-1 {
			total += len(" ")
		}
	}

	out := NewStringZero(total)
	buf := out.Bytes()
	off := 0
	for ; off < indent; off++ {
		buf[off] = '\t'
	}
	buf[off] = '['
	off++
	for i := 0; i < parts.n; i++ {
		// Every part was checked while measuring.
		off += copy(buf[off:], AsString(parts.data[i]).data)
		if i != parts.n-1 {
			buf[off] = ' '
			off++
		}
	}
	buf[off] = ']'
	return out
}

// String renders t for diagnostics. Borrowed views render too.
func (t *Table) String() string {
	if !t.Usable() {
		return "undefined"
	}
	// Render through a static wrapper so borrowed views need no Value.
	view := &Table{hdr: Refs{mode: Static}, data: t.data, n: t.n}
	v := wrap(KindTable, view)
	s := Stringify(&v, 0)
	if s == nil {
		return "undefined"
	}
	text := s.String()
	sv := StringValue(s)
	Release(&sv)
	return text
}
