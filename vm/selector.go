package vm

// SelectorTable interns message names to numeric IDs for fast lookup.
//
// Message names like "append" or "insert" are converted to IDs once, when a
// kind registers its methods, so dispatch can index a slice instead of
// comparing strings. The table is append-only.
type SelectorTable struct {
	byName map[string]int // name -> ID
	byID   []string       // ID -> name
}

// NewSelectorTable creates a new empty selector table.
func NewSelectorTable() *SelectorTable {
	return &SelectorTable{
		byName: make(map[string]int),
		byID:   make([]string, 0, 32),
	}
}

// Selectors is the process-wide selector table used by every kind.
var Selectors = NewSelectorTable()

// Intern returns the ID for a message name, creating a new ID if needed.
func (st *SelectorTable) Intern(name string) int {
	if id, ok := st.byName[name]; ok {
		return id
	}
	id := len(st.byID)
	st.byName[name] = id
	st.byID = append(st.byID, name)
	return id
}

// Lookup returns the ID for a message name, or -1 if it was never interned.
// A name nobody registered cannot match any method, so dispatch uses Lookup
// rather than Intern to keep the table from growing on misses.
func (st *SelectorTable) Lookup(name string) int {
	if id, ok := st.byName[name]; ok {
		return id
	}
	return -1
}

// Name returns the message name for an ID, or "" if invalid.
func (st *SelectorTable) Name(id int) string {
	if id < 0 || id >= len(st.byID) {
		return ""
	}
	return st.byID[id]
}
