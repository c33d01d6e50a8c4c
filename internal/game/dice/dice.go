// Package dice provides the randomness abstraction used by the combat core.
// Every random decision (enemy move choice, flee roll, encounter roll) goes
// through a Source so that tests can script or seed the outcomes.
package dice

// Source is the randomness provider.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
	// Float64 returns a random float64 in [0, 1).
	Float64() float64
}
