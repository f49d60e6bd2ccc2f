package layout

import (
	"errors"
	"testing"
)

func TestStacksOrder(t *testing.T) {
	s := NewStacks()
	a := s.Push(1, 0, Slot{Index: 0})
	b := s.Push(3, 0, Slot{Index: 1})
	c := s.Push(1, 0.5, Slot{Index: 0}, Slot{Index: 1})
	d := s.Push(2, 0.25, Slot{Index: 0})
	e := s.Push(1, 0, Slot{Index: 2})

	if s.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", s.Len())
	}
	got, err := s.Order()
	if err != nil {
		t.Fatalf("Order: %v", err)
	}
	want := map[int]float64{a: 0, b: 0, c: 3.5, d: 4.75, e: 0}
	for id, off := range want {
		if got[id] != off {
			t.Errorf("offset[%d] = %v, want %v", id, got[id], off)
		}
	}
}

func TestStacksDuplicateSlot(t *testing.T) {
	s := NewStacks()
	s.Push(1, 0, Slot{Index: 0})
	top := s.Push(1, 0, Slot{Index: 0}, Slot{Index: 0})
	got, err := s.Order()
	if err != nil {
		t.Fatalf("Order: %v", err)
	}
	if got[top] != 1 {
		t.Errorf("offset = %v, want 1", got[top])
	}
}

func TestStacksNudgeSeparatesSlots(t *testing.T) {
	s := NewStacks()
	s.Push(1, 0, Slot{Index: 0, Nudge: -1})
	right := s.Push(1, 0, Slot{Index: 0, Nudge: 1})
	got, err := s.Order()
	if err != nil {
		t.Fatalf("Order: %v", err)
	}
	if got[right] != 0 {
		t.Errorf("offset = %v, want 0", got[right])
	}
}

func TestStacksCycle(t *testing.T) {
	s := NewStacks()
	a := s.Push(1, 0)
	b := s.Push(1, 0)
	s.Above(a, b)
	s.Above(b, a)
	if _, err := s.Order(); !errors.Is(err, ErrStackCycle) {
		t.Fatalf("Order() error = %v, want ErrStackCycle", err)
	}
}
