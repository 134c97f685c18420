// Package release holds the process-wide release-rate registry: the
// (fast, slow) pair of per-sample amplitude decay multipliers applied
// by the mix loop's release envelope (spec.md §3 "Release
// Coefficients"). It is overwritten wholesale at every successful
// instrument load and read once per audio callback.
package release

import "sync/atomic"

// Default coefficients, used until an instrument load overrides them.
const (
	DefaultFast = 0.9998
	DefaultSlow = 0.99999
)

// pair bundles fast and slow so they can be swapped atomically without
// the audio thread ever observing a half-updated pair.
type pair struct {
	fast float64
	slow float64
}

// Registry is a lock-free, snapshot-per-read store for the release
// coefficients. The audio thread calls Snapshot once per callback; the
// loader calls Set once per successful load.
type Registry struct {
	value atomic.Pointer[pair]
}

// New returns a registry initialized to the default coefficients.
func New() *Registry {
	r := &Registry{}
	r.value.Store(&pair{fast: DefaultFast, slow: DefaultSlow})
	return r
}

// Set overwrites the registry with new coefficients.
func (r *Registry) Set(fast, slow float64) {
	r.value.Store(&pair{fast: fast, slow: slow})
}

// Snapshot returns the current (fast, slow) pair.
func (r *Registry) Snapshot() (fast, slow float64) {
	p := r.value.Load()
	return p.fast, p.slow
}

// FromDescriptorSettings extracts fast_release and slow_release from a
// settings lookup, falling back to the supplied defaults for whichever
// key is absent or uncoercible (spec.md §4.3 step 2).
func FromDescriptorSettings(lookup func(key string) (float64, bool)) (fast, slow float64) {
	fast = DefaultFast
	slow = DefaultSlow
	if f, ok := lookup("fast_release"); ok {
		fast = f
	}
	if s, ok := lookup("slow_release"); ok {
		slow = s
	}
	return fast, slow
}
