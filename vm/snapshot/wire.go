// Package snapshot serializes value graphs to CBOR and keeps them in a
// SQLite store.
package snapshot

import (
	"errors"
	"fmt"

	"github.com/chazu/kut/vm"
	"github.com/fxamacker/cbor/v2"
)

// DefaultMaxDepth bounds nesting when no depth is configured. Graphs are
// not checked for cycles; a cycle simply runs into this bound.
const DefaultMaxDepth = 64

var (
	// ErrTooDeep is returned when a graph nests deeper than the limit.
	ErrTooDeep = errors.New("snapshot: value graph too deep")

	// ErrUnencodable is returned for kinds with no wire form.
	ErrUnencodable = errors.New("snapshot: value kind cannot be encoded")

	// ErrAllocation is returned when a table cannot be allocated on decode.
	ErrAllocation = errors.New("snapshot: table allocation failed")
)

// Node is the wire form of one Value.
type Node struct {
	Kind  string  `cbor:"1,keyasint"`
	Num   float64 `cbor:"2,keyasint"`
	Bool  bool    `cbor:"3,keyasint,omitempty"`
	Text  []byte  `cbor:"4,keyasint,omitempty"`
	Items []Node  `cbor:"5,keyasint,omitempty"`
}

// maxNestedLevels is the cbor package's ceiling on DecOptions.MaxNestedLevels.
const maxNestedLevels = 65535

var (
	cborEncMode cbor.EncMode
	cborDecMode cbor.DecMode
)

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("snapshot: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em

	dm, err := decModeFor(DefaultMaxDepth)
	if err != nil {
		panic(fmt.Sprintf("snapshot: failed to create CBOR dec mode: %v", err))
	}
	cborDecMode = dm
}

// decModeFor returns a decoder that admits graphs maxDepth nodes deep. Each
// node costs two CBOR levels: its map and its Items array.
func decModeFor(maxDepth int) (cbor.DecMode, error) {
	if maxDepth == DefaultMaxDepth && cborDecMode != nil {
		return cborDecMode, nil
	}
	levels := 2*maxDepth + 2
	if levels > maxNestedLevels {
		levels = maxNestedLevels
	}
	return cbor.DecOptions{MaxNestedLevels: levels}.DecMode()
}

// Encode serializes v and everything it reaches. Counts are not touched.
func Encode(v vm.Value, maxDepth int) ([]byte, error) {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	n, err := toNode(v, maxDepth)
	if err != nil {
		return nil, err
	}
	return cborEncMode.Marshal(n)
}

func toNode(v vm.Value, depth int) (Node, error) {
	if depth <= 0 {
		return Node{}, ErrTooDeep
	}
	n := Node{Kind: v.Kind().String()}
	switch v.Kind() {
	case vm.KindNil, vm.KindUndefined:
	case vm.KindBoolean:
		n.Bool = vm.AsBool(v)
	case vm.KindNumber:
		n.Num = vm.AsNumber(v)
	case vm.KindString:
		s := vm.AsString(v)
		if s == nil {
			return Node{}, fmt.Errorf("%w: freed string", ErrUnencodable)
		}
		n.Text = append([]byte{}, s.Bytes()...)
	case vm.KindTable:
		t := vm.AsTable(v)
		if t == nil {
			return Node{}, fmt.Errorf("%w: freed table", ErrUnencodable)
		}
		n.Items = make([]Node, 0, t.Len())
		for _, elem := range t.Values() {
			child, err := toNode(elem, depth-1)
			if err != nil {
				return Node{}, err
			}
			n.Items = append(n.Items, child)
		}
	case vm.KindReference:
		r := vm.AsReference(v)
		if r == nil {
			return Node{}, fmt.Errorf("%w: freed reference", ErrUnencodable)
		}
		child, err := toNode(r.Target(), depth-1)
		if err != nil {
			return Node{}, err
		}
		n.Items = []Node{child}
	default:
		return Node{}, fmt.Errorf("%w: %s", ErrUnencodable, v.Kind())
	}
	return n, nil
}

// Decode rebuilds a value graph from CBOR. Every record in the result is
// freshly owned; the caller holds the single reference to the root.
func Decode(data []byte, maxDepth int) (vm.Value, error) {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	dm, err := decModeFor(maxDepth)
	if err != nil {
		return vm.Undefined, fmt.Errorf("snapshot: decoder: %w", err)
	}
	var n Node
	if err := dm.Unmarshal(data, &n); err != nil {
		return vm.Undefined, fmt.Errorf("snapshot: unmarshal: %w", err)
	}
	return fromNode(n, maxDepth)
}

func fromNode(n Node, depth int) (vm.Value, error) {
	if depth <= 0 {
		return vm.Undefined, ErrTooDeep
	}
	k, ok := vm.KindByName(n.Kind)
	if !ok {
		return vm.Undefined, fmt.Errorf("snapshot: unknown kind %q", n.Kind)
	}
	switch k {
	case vm.KindNil:
		return vm.Nil, nil
	case vm.KindUndefined:
		return vm.Undefined, nil
	case vm.KindBoolean:
		return vm.BoolValue(n.Bool), nil
	case vm.KindNumber:
		return vm.NumberValue(n.Num), nil
	case vm.KindString:
		return vm.StringValue(vm.NewString(string(n.Text))), nil
	case vm.KindTable:
		t := vm.NewTable(len(n.Items))
		if t == nil {
			return vm.Undefined, ErrAllocation
		}
		tv := vm.TableValue(t)
		for _, item := range n.Items {
			child, err := fromNode(item, depth-1)
			if err != nil {
				vm.Release(&tv)
				return vm.Undefined, err
			}
			t.Append(child)
			vm.Release(&child)
		}
		return tv, nil
	case vm.KindReference:
		if len(n.Items) != 1 {
			return vm.Undefined, fmt.Errorf("snapshot: reference with %d targets", len(n.Items))
		}
		target, err := fromNode(n.Items[0], depth-1)
		if err != nil {
			return vm.Undefined, err
		}
		r := vm.NewReference(target)
		vm.Release(&target)
		return vm.ReferenceValue(r), nil
	default:
		return vm.Undefined, fmt.Errorf("%w: %s", ErrUnencodable, k)
	}
}
