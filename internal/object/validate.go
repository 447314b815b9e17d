package object

import "amberlang/internal/vmerrors"

// ValidateNoCycles checks every object's prototype chain for a cycle,
// called once per module load right before the permanent space is sealed
// (spec.md §3 invariant: "cycles are forbidden (the loader must reject
// them)"). It is defined here rather than as a loader-only check because
// it works on any set of objects; the loader executes no bytecode and
// passes it the objects published in the permanent space so far.
func ValidateNoCycles(objs []*Object) error {
	for _, o := range objs {
		if HasCycle(Ref(o)) {
			return vmerrors.New(vmerrors.InvalidType, "cyclic prototype chain detected for object %q", o.Name)
		}
	}
	return nil
}
