package diff

import "testing"

func TestNewModel(t *testing.T) {
	initial := NewSnapshot(nil, 0, 0)
	m := NewModel(initial)

	if m.Get() != initial {
		t.Error("Get() did not return the initial snapshot")
	}
	if m.Generation() != 0 {
		t.Errorf("Generation() = %d, want 0", m.Generation())
	}
}

func TestModel_Publish(t *testing.T) {
	m := NewModel(NewSnapshot(nil, 0, 0))
	next := NewSnapshot([]Hunk{{Kind: KindInsert, NewLines: []string{"x\n"}}}, 0, 1)

	m.Publish(next)

	if m.Get() != next {
		t.Error("Get() did not return the published snapshot")
	}
	if m.Generation() != 1 {
		t.Errorf("Generation() = %d, want 1", m.Generation())
	}
}

func TestModel_PublishNilIgnored(t *testing.T) {
	initial := NewSnapshot(nil, 0, 0)
	m := NewModel(initial)

	m.Publish(nil)

	if m.Get() != initial {
		t.Error("nil publish replaced the snapshot")
	}
	if m.Generation() != 0 {
		t.Errorf("nil publish bumped generation to %d", m.Generation())
	}
}

func TestModel_Observers(t *testing.T) {
	m := NewModel(NewSnapshot(nil, 0, 0))

	var got *Snapshot
	calls := 0
	sub := m.Subscribe(func(snap *Snapshot) {
		got = snap
		calls++
	})

	next := NewSnapshot(nil, 1, 1)
	m.Publish(next)

	if calls != 1 {
		t.Fatalf("observer called %d times, want 1", calls)
	}
	if got != next {
		t.Error("observer got a different snapshot")
	}

	sub.Unsubscribe()
	m.Publish(NewSnapshot(nil, 2, 2))

	if calls != 1 {
		t.Errorf("observer called after unsubscribe, calls = %d", calls)
	}
}

func TestModel_MultipleObservers(t *testing.T) {
	m := NewModel(NewSnapshot(nil, 0, 0))

	var a, b int
	subA := m.Subscribe(func(*Snapshot) { a++ })
	defer subA.Unsubscribe()
	subB := m.Subscribe(func(*Snapshot) { b++ })
	defer subB.Unsubscribe()

	m.Publish(NewSnapshot(nil, 1, 1))
	m.Publish(NewSnapshot(nil, 2, 2))

	if a != 2 || b != 2 {
		t.Errorf("observer calls = (%d, %d), want (2, 2)", a, b)
	}
}
