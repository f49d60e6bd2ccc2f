package playback

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/knitstack/pkg/knit"
)

func TestAnimatorFIFO(t *testing.T) {
	a := NewAnimator(1)
	var done []string
	for _, name := range []string{"first", "second"} {
		a.Enqueue(Animation{
			Name:   name,
			Phases: []Phase{{Name: "p", Channels: []Channel{{Name: "x", Value: 0, Target: 1}}}},
			OnDone: func() { done = append(done, name) },
		})
	}

	steps := 0
	for a.Busy() && steps < 100 {
		a.Advance(0.5)
		steps++
	}
	if diff := cmp.Diff([]string{"first", "second"}, done); diff != "" {
		t.Errorf("completion order mismatch (-want +got):\n%s", diff)
	}
	// Two moving calls per animation; the first animation's finishing
	// call starts the second one in the same call.
	if steps != 5 {
		t.Errorf("steps = %d, want 5", steps)
	}
}

func TestAnimatorClampsToTarget(t *testing.T) {
	a := NewAnimator(10)
	a.Enqueue(Animation{Phases: []Phase{{Name: "p", Channels: []Channel{
		{Name: "up", Value: 0, Target: 3},
		{Name: "down", Value: 2, Target: -1},
	}}}})
	a.Advance(0.2)
	for name, want := range map[string]float64{"up": 2, "down": 0} {
		if got, _ := a.Value(name); got != want {
			t.Errorf("%s = %v, want %v", name, got, want)
		}
	}
	a.Advance(1)
	for name, want := range map[string]float64{"up": 3, "down": -1} {
		if got, _ := a.Value(name); got != want {
			t.Errorf("%s = %v, want %v", name, got, want)
		}
	}
	a.Advance(1)
	if a.Busy() {
		t.Error("animation still queued after reaching its targets")
	}
}

func TestAnimatorSkipsStillPhases(t *testing.T) {
	a := NewAnimator(1)
	a.Enqueue(XferAnimation("xfer", 0, 0))
	a.Advance(1)
	// extend reaches 1; rack has nothing to do.
	if _, phase, _ := a.Current(); phase != PhaseExtend {
		t.Fatalf("phase = %q, want %q", phase, PhaseExtend)
	}
	a.Advance(0.5)
	if _, phase, _ := a.Current(); phase != PhaseMove {
		t.Fatalf("phase = %q, want %q", phase, PhaseMove)
	}
	if v, _ := a.Value(PhaseMove); v != 0.5 {
		t.Errorf("move = %v, want 0.5", v)
	}
}

func TestXferAnimationPhases(t *testing.T) {
	anim := XferAnimation("xfer f1 b2", -1, 1)
	var names []string
	for _, p := range anim.Phases {
		names = append(names, p.Name)
	}
	if diff := cmp.Diff([]string{PhaseExtend, PhaseRack, PhaseMove, PhaseRetract}, names); diff != "" {
		t.Errorf("phases mismatch (-want +got):\n%s", diff)
	}

	a := NewAnimator(1)
	a.Enqueue(anim)
	a.Advance(1) // extend to 1
	a.Advance(1) // extend done, rack -1 -> 0
	if v, _ := a.Value(PhaseRack); v != 0 {
		t.Errorf("rack = %v, want 0", v)
	}
	if anim.Phases[1].Channels[0].Value != -1 {
		t.Error("Enqueue shares channel storage with the caller")
	}
}

func TestAnimatorClear(t *testing.T) {
	a := NewAnimator(0)
	called := false
	a.Enqueue(Animation{OnDone: func() { called = true }})
	a.Clear()
	a.Advance(1)
	if called || a.Len() != 0 {
		t.Errorf("Clear left work behind: called=%v len=%d", called, a.Len())
	}
}

func TestXferAnimationRackInEveryPhase(t *testing.T) {
	a := NewAnimator(1)
	a.Enqueue(XferAnimation("first", 0, 2))
	a.Enqueue(XferAnimation("second", 2, -1))

	want := map[string]float64{PhaseExtend: 0, PhaseMove: 2, PhaseRetract: 2}
	for i := 0; i < 100 && a.Len() == 2; i++ {
		_, phase, _ := a.Current()
		v, ok := a.Value(PhaseRack)
		if !ok {
			t.Fatalf("no rack value during %s", phase)
		}
		if w, held := want[phase]; held && v != w {
			t.Errorf("rack during %s = %v, want %v", phase, v, w)
		}
		a.Advance(0.25)
	}
	if name, phase, _ := a.Current(); name != "second" || phase != PhaseExtend {
		t.Fatalf("running %q %q, want second extend", name, phase)
	}
	if v, _ := a.Value(PhaseRack); v != 2 {
		t.Errorf("second animation extends at rack %v, want 2", v)
	}
}

func TestPassAnimations(t *testing.T) {
	step := func(racking int, passes ...Pass) Step {
		return Step{Label: "line", Snapshot: knit.Snapshot{Racking: racking}, Passes: passes}
	}
	tests := []struct {
		name string
		st   Step
		from int
		want [][2]float64
	}{
		{"no passes", step(1), 0, [][2]float64{{0, 1}}},
		{"one pass per animation", step(1, Pass{Racking: -1}, Pass{Racking: 1}), 0, [][2]float64{{0, -1}, {-1, 1}}},
		{"rack after the passes", step(2, Pass{Racking: 1}), 0, [][2]float64{{0, 1}, {1, 2}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got [][2]float64
			for _, a := range PassAnimations(tt.st, tt.from) {
				c := a.Phases[1].Channels[0]
				got = append(got, [2]float64{c.Value, c.Target})
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("rack spans mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
