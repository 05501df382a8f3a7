package vm

import (
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"
)

const logName = "kut.vm"

// Limits bounds the resources tables may claim.
type Limits struct {
	// MaxCapacity is the largest slot count a table may allocate. A request
	// above it is treated as an allocation failure. Zero means unlimited.
	MaxCapacity int

	// TraceLifetime logs every record free at debug level.
	TraceLifetime bool
}

var limits Limits

// SetLimits installs l and returns the previous limits.
func SetLimits(l Limits) Limits {
	prev := limits
	limits = l
	return prev
}

// CurrentLimits returns the limits in force.
func CurrentLimits() Limits {
	return limits
}

func logger() commonlog.Logger {
	return commonlog.GetLogger(logName)
}

// allocationAllowed reports whether a buffer of n slots may be allocated,
// logging a memory error when it may not.
func allocationAllowed(n int) bool {
	if limits.MaxCapacity > 0 && n > limits.MaxCapacity {
		logger().Errorf("memory error: %d slots requested, limit is %d", n, limits.MaxCapacity)
		return false
	}
	return true
}

func traceFree(k Kind) {
	if limits.TraceLifetime {
		logger().Debugf("freed %s record", k)
	}
}
