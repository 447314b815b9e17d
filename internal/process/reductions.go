package process

// Reduction weights resolve the Open Question in spec.md §9 ("Exact weight
// of each instruction toward reductions decrement is not specified ...").
// Plain register/control instructions cost one reduction; allocation and
// call/spawn instructions cost more because they do proportionally more
// work (a fresh frame, a new heap object, a new scheduled process), so
// processes that allocate or call heavily yield sooner and don't starve
// their peers — the fairness property spec.md §8 scenario 6 checks for.
const (
	WeightInstruction = 1
	WeightAllocation  = 10
	WeightCall        = 20
)

// DefaultReductions is the fuel a process is given per time slice before
// the interpreter forces a yield (spec.md §4.C "Reductions").
const DefaultReductions = 4000

// Reductions is the per-process fuel counter.
type Reductions struct {
	remaining int
	initial   int
}

// NewReductions returns a counter starting at initial.
func NewReductions(initial int) *Reductions {
	return &Reductions{remaining: initial, initial: initial}
}

// Charge deducts weight reductions, never going below zero.
func (r *Reductions) Charge(weight int) {
	r.remaining -= weight
	if r.remaining < 0 {
		r.remaining = 0
	}
}

// Exhausted reports whether the counter has reached zero
// (spec.md §8 invariant 5: "at 0 the process yields within one
// instruction").
func (r *Reductions) Exhausted() bool { return r.remaining <= 0 }

// Remaining reports the current fuel level.
func (r *Reductions) Remaining() int { return r.remaining }

// Reset restores the counter to its initial value, done when a process is
// rescheduled after a yield (spec.md §4.C "counter reset").
func (r *Reductions) Reset() { r.remaining = r.initial }
