package vm

// Ownership describes how a heap record participates in reference counting.
type Ownership uint8

const (
	// Owned records carry a live count and are freed when it drops from 1.
	Owned Ownership = iota

	// Borrowed records alias memory owned by someone else. Their count is
	// fixed at 0 and they are never freed by this package.
	Borrowed

	// Static records are process-wide singletons. They report a count of 1
	// and are never freed or mutated.
	Static
)

func (o Ownership) String() string {
	switch o {
	case Owned:
		return "owned"
	case Borrowed:
		return "borrowed"
	case Static:
		return "static"
	default:
		return "unknown"
	}
}

// Refs is the ownership header embedded in every heap record.
type Refs struct {
	mode  Ownership
	count uint64
	freed bool
}

func ownedRefs() Refs {
	return Refs{mode: Owned, count: 1}
}

// Mode returns the ownership mode.
func (r *Refs) Mode() Ownership {
	return r.mode
}

// Count returns the observable reference count.
func (r *Refs) Count() int {
	switch r.mode {
	case Borrowed:
		return 0
	case Static:
		return 1
	default:
		return int(r.count)
	}
}

// Freed returns true once an owned record has lost its last owner.
func (r *Refs) Freed() bool {
	return r.freed
}

// retain adds an owner. Borrowed, static and freed records are untouched.
func (r *Refs) retain() {
	if r.mode != Owned || r.freed || r.count == 0 {
		return
	}
	r.count++
}

// release drops an owner and returns true when the record must be freed.
// The record is marked freed before the caller releases its children.
func (r *Refs) release() bool {
	if r.mode != Owned || r.freed || r.count == 0 {
		return false
	}
	if r.count == 1 {
		r.count = 0
		r.freed = true
		return true
	}
	r.count--
	return false
}
