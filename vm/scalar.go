package vm

import (
	"math"
	"strconv"
)

// Inline kinds carry their payload in the Value itself and have no
// lifetime handlers.

func init() {
	// Undefined answers nothing; every message resolves to Absent.
	registerType(&Type{
		Kind: KindUndefined,
		stringify: func(self *Value, indent int) *String {
			return indented(indent, "undefined")
		},
	})

	b := registerType(&Type{
		Kind: KindBoolean,
		stringify: func(self *Value, indent int) *String {
			if self.kind != KindBoolean {
				return nil
			}
			return indented(indent, strconv.FormatBool(AsBool(*self)))
		},
	})
	b.Methods.AddMethod(Selectors, "tostring", tostring)
	b.Methods.AddMethod(Selectors, "not", func(self *Value, args *Table) Value {
		if self == nil || self.kind != KindBoolean {
			return Undefined
		}
		return BoolValue(!AsBool(*self))
	})

	n := registerType(&Type{
		Kind: KindNumber,
		stringify: func(self *Value, indent int) *String {
			if self.kind != KindNumber {
				return nil
			}
			return indented(indent, FormatNumber(self.num))
		},
	})
	n.Methods.AddMethod(Selectors, "tostring", tostring)
}

// FormatNumber renders n in its shortest round-tripping form. Integral
// values below 1e21 are written without an exponent: 3, 1234567, 2.5, 1e+21.
func FormatNumber(n float64) string {
	if n == math.Trunc(n) && math.Abs(n) < 1e21 {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return strconv.FormatFloat(n, 'g', -1, 64)
}
