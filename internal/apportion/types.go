package apportion

// Result represents a summary of an apportionment run. Quotas and
// TotalObservations are derived values that callers can use when they need the
// exact shares in addition to the integer cell distribution.
type Result struct {
	Cells             map[string]int
	Quotas            map[string]float64
	TotalObservations int
}

// Allocator describes the behaviour required from an apportionment calculator.
type Allocator interface {
	Allocate(frequencies map[string]int) (map[string]int, error)
}
