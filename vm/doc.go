// Package vm implements the kut object model.
//
// This package contains:
//   - Tagged value representation with a closed set of kinds
//   - Per-kind dispatch tables keyed by interned message names
//   - Manual reference counting with owned, borrowed and static records
//   - Tables, the growable ordered container used for data and arguments
//   - Recursive stringification
//
// Execution is single-threaded. Nothing in this package takes a lock.
package vm
