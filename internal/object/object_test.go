package object

import "testing"

func TestAttributeSetThenGet(t *testing.T) {
	o := New(Local)
	o.AddAttribute("x", Int(42))
	got, ok := o.LookupAttribute("x")
	if !ok || !got.Equal(Int(42)) {
		t.Fatalf("LookupAttribute(x) = %v, %v; want 42, true", got, ok)
	}
}

func TestAttributeOrderPreserved(t *testing.T) {
	o := New(Local)
	o.AddAttribute("b", Int(2))
	o.AddAttribute("a", Int(1))
	o.AddAttribute("b", Int(20)) // rebind must not reorder
	want := []string{"b", "a"}
	if len(o.attrNames) != len(want) {
		t.Fatalf("got %v names, want %v", o.attrNames, want)
	}
	for i, n := range want {
		if o.attrNames[i] != n {
			t.Fatalf("attrNames[%d] = %q, want %q", i, o.attrNames[i], n)
		}
	}
	v, _ := o.LookupAttribute("b")
	if !v.Equal(Int(20)) {
		t.Fatalf("rebind did not update value: got %v", v)
	}
}

func TestMethodLookupProximity(t *testing.T) {
	grandparent := New(Permanent)
	grandparent.AddMethod("greet", Int(1))

	parent := New(Permanent)
	parent.SetPrototype(Ref(grandparent))
	parent.AddMethod("greet", Int(2))

	child := New(Permanent)
	child.SetPrototype(Ref(parent))

	got, ok := LookupMethod(Ref(child), "greet")
	if !ok || !got.Equal(Int(2)) {
		t.Fatalf("LookupMethod nearest-wins failed: got %v, %v", got, ok)
	}

	got, ok = LookupMethod(Ref(grandparent), "greet")
	if !ok || !got.Equal(Int(1)) {
		t.Fatalf("LookupMethod on root failed: got %v, %v", got, ok)
	}
}

func TestLookupMethodMissNeverFails(t *testing.T) {
	o := New(Local)
	got, ok := LookupMethod(Ref(o), "nope")
	if ok || !got.IsNil() {
		t.Fatalf("expected (Nil, false), got (%v, %v)", got, ok)
	}
}

func TestLookupMethodIdempotent(t *testing.T) {
	o := New(Local)
	o.AddMethod("m", Int(7))
	first, _ := LookupMethod(Ref(o), "m")
	second, _ := LookupMethod(Ref(o), "m")
	if !first.Equal(second) {
		t.Fatalf("lookup not idempotent: %v != %v", first, second)
	}
}

func TestRespondsTo(t *testing.T) {
	o := New(Local)
	o.AddMethod("m", Int(1))
	if !RespondsTo(Ref(o), "m") {
		t.Fatal("expected RespondsTo true")
	}
	if RespondsTo(Ref(o), "missing") {
		t.Fatal("expected RespondsTo false")
	}
}

func TestHasCycleDetectsSelfReference(t *testing.T) {
	a := New(Permanent)
	b := New(Permanent)
	a.SetPrototype(Ref(b))
	b.SetPrototype(Ref(a))
	if !HasCycle(Ref(a)) {
		t.Fatal("expected cycle to be detected")
	}
}

func TestHasCycleAcceptsChain(t *testing.T) {
	a := New(Permanent)
	b := New(Permanent)
	a.SetPrototype(Ref(b))
	if HasCycle(Ref(a)) {
		t.Fatal("did not expect a cycle on a plain chain")
	}
}

func TestPointerEqualityIsBitwise(t *testing.T) {
	o := New(Local)
	p1 := Ref(o)
	p2 := Ref(o)
	if !p1.Equal(p2) {
		t.Fatal("expected equal pointers to the same object")
	}
	o2 := New(Local)
	if p1.Equal(Ref(o2)) {
		t.Fatal("did not expect pointers to different objects to be equal")
	}
	if !Int(5).Equal(Int(5)) {
		t.Fatal("expected equal small integers to compare equal")
	}
	if Int(5).Equal(Int(6)) {
		t.Fatal("did not expect different small integers to compare equal")
	}
}

func TestIsPermanent(t *testing.T) {
	if !Int(1).IsPermanent() {
		t.Fatal("small integers are always permanent-safe")
	}
	local := Ref(New(Local))
	if local.IsPermanent() {
		t.Fatal("local object must not report permanent")
	}
	perm := Ref(New(Permanent))
	if !perm.IsPermanent() {
		t.Fatal("permanent object must report permanent")
	}
}

func TestInternStable(t *testing.T) {
	tbl := NewTable()
	a := tbl.Intern("greet")
	b := tbl.Intern("greet")
	if a.Hash != b.Hash || a.Name != b.Name {
		t.Fatalf("interning the same name twice produced different symbols: %v vs %v", a, b)
	}
	c := tbl.Intern("other")
	if c.Hash == a.Hash && c.Name != a.Name {
		t.Fatalf("unexpected hash collision in test fixture")
	}
}
