package layout

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/matzehuels/knitstack/pkg/knit"
)

func ref(s string) knit.NeedleRef { return knit.MustParseNeedle(s) }

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func mustCompute(t *testing.T, m *knit.Machine, opts ...Option) Frame {
	t.Helper()
	f, err := Compute(m, DefaultParams(), opts...)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	return f
}

func TestComputeSingleLoop(t *testing.T) {
	m := knit.New()
	loop := m.MakeLoop(ref("f0"))
	f := mustCompute(t, m, WithStep(3), WithLabel("knit + f0 1"))

	if f.Step != 3 || f.Label != "knit + f0 1" {
		t.Errorf("step/label = %d %q", f.Step, f.Label)
	}
	if f.Width != 36 {
		t.Errorf("Width = %v, want 36", f.Width)
	}
	if f.Height != 70 {
		t.Errorf("Height = %v, want 70", f.Height)
	}
	wantNeedles := []NeedleBox{{Needle: "f0", Box: Rect{Left: 16, Top: 40, Right: 20, Bottom: 60}}}
	if diff := cmp.Diff(wantNeedles, f.Needles); diff != "" {
		t.Errorf("Needles mismatch (-want +got):\n%s", diff)
	}

	got, ok := f.Item(loop)
	if !ok {
		t.Fatal("loop missing from frame")
	}
	want := Rect{Left: 14, Top: 44, Right: 22, Bottom: 46}
	if got.Box != want || got.Kind != "loop" || got.Needle != "f0" {
		t.Errorf("loop = %+v, want box %+v", got, want)
	}

	var kinds []string
	for _, it := range f.Items {
		kinds = append(kinds, it.Kind)
	}
	if diff := cmp.Diff([]string{"loop", "hook", "tip"}, kinds); diff != "" {
		t.Errorf("item kinds mismatch (-want +got):\n%s", diff)
	}
	if len(f.Anchors) != 1 || f.Anchors[0] != (Anchor{Item: loop, X: 18, Y: 65}) {
		t.Errorf("Anchors = %+v", f.Anchors)
	}
}

func TestComputeBackBedFacesFront(t *testing.T) {
	m := knit.New()
	front := m.MakeLoop(ref("f0"))
	back := m.MakeLoop(ref("b0"))
	f := mustCompute(t, m)

	fb, _ := f.Item(front)
	bb, _ := f.Item(back)
	// Back loop sits just below the back tip, front loop just above the front tip.
	if bb.Box.CenterY() != 15 {
		t.Errorf("back loop y = %v, want 15", bb.Box.CenterY())
	}
	if fb.Box.CenterY() != 45 {
		t.Errorf("front loop y = %v, want 45", fb.Box.CenterY())
	}
}

func TestComputeSliderRegion(t *testing.T) {
	m := knit.New()
	low := m.MakeLoop(ref("f0"))
	high := m.MakeLoop(ref("fs0"))
	f := mustCompute(t, m)

	var kinds []string
	for _, it := range f.Items {
		kinds = append(kinds, it.Kind)
	}
	if diff := cmp.Diff([]string{"loop", "hook", "loop", "tip"}, kinds); diff != "" {
		t.Errorf("item kinds mismatch (-want +got):\n%s", diff)
	}
	lo, _ := f.Item(low)
	hi, _ := f.Item(high)
	// tip 40..41, gap, slider loop 42..44, gap, hook 45..47, gap, loop 48..50
	if hi.Box.Top != 42 || lo.Box.Top != 48 {
		t.Errorf("tops = slider %v hook %v, want 42 and 48", hi.Box.Top, lo.Box.Top)
	}
}

func TestComputeNoOverlapUnderCapacity(t *testing.T) {
	m := knit.New()
	for range 7 {
		m.MakeLoop(ref("b2"))
	}
	f := mustCompute(t, m)
	needle := f.Needles[0].Box

	for i, a := range f.Items {
		if a.Box.Top < needle.Top-1e-9 || a.Box.Bottom > needle.Bottom+1e-9 {
			t.Errorf("item %d %+v outside needle %+v", i, a.Box, needle)
		}
		for _, b := range f.Items[i+1:] {
			if a.Box.Overlaps(b.Box) && !approx(a.Box.Bottom, b.Box.Top) && !approx(a.Box.Top, b.Box.Bottom) {
				t.Errorf("items %d and %d overlap: %+v %+v", a.ID, b.ID, a.Box, b.Box)
			}
		}
	}
}

func TestComputeRackingAlignsBeds(t *testing.T) {
	m := knit.New()
	m.AddNeedle(ref("f1").Key())
	m.AddNeedle(ref("b0").Key())
	if err := m.SetRacking(1); err != nil {
		t.Fatal(err)
	}
	f := mustCompute(t, m)

	x := map[string]float64{}
	for _, n := range f.Needles {
		x[n.Needle] = n.Box.CenterX()
	}
	if x["b0"] != x["f1"] {
		t.Errorf("b0 at %v, f1 at %v; want aligned at racking 1", x["b0"], x["f1"])
	}
	if f.Width != 72 {
		t.Errorf("Width = %v, want 72", f.Width)
	}
}

func TestComputeStrain(t *testing.T) {
	m := knit.New()
	a := m.MakeLoop(ref("f0"))
	b := m.MakeLoop(ref("f2"))
	s := m.NewSlack(36)
	if _, err := m.Connect(knit.Port{Item: a, Side: knit.Right}, knit.Port{Item: b, Side: knit.Left}, s); err != nil {
		t.Fatal(err)
	}
	u := m.MakeLoop(ref("f4"))
	if _, err := m.Connect(knit.Port{Item: b, Side: knit.Right}, knit.Port{Item: u, Side: knit.Left}, knit.NoSlack); err != nil {
		t.Fatal(err)
	}
	f := mustCompute(t, m)

	if len(f.Links) != 2 {
		t.Fatalf("len(Links) = %d, want 2", len(f.Links))
	}
	l := f.Links[0]
	if l.From.X != 22 || l.To.X != 50 || l.From.Y != 45 {
		t.Errorf("link ends = %+v -> %+v", l.From, l.To)
	}
	if !approx(l.Strain, 28.0/36) {
		t.Errorf("Strain = %v, want %v", l.Strain, 28.0/36)
	}
	if f.Links[1].Slack != -1 || f.Links[1].Strain != 0 {
		t.Errorf("unslacked link = %+v", f.Links[1])
	}

	want := []SlackUse{{ID: s, Length: 36, Current: 28}}
	if diff := cmp.Diff(want, f.Slacks, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("slacks mismatch (-want +got):\n%s", diff)
	}
	if got := m.Slack(s).Current; !approx(got, 28) {
		t.Errorf("machine slack current = %v, want 28", got)
	}
}

func TestComputeAnchorsRelaxed(t *testing.T) {
	m := knit.New()
	a := m.MakeLoop(ref("f0"))
	b := m.MakeLoop(ref("f0"))
	f := mustCompute(t, m)

	want := []Anchor{{Item: a, X: 12.75, Y: 65}, {Item: b, X: 23.25, Y: 65}}
	if diff := cmp.Diff(want, f.Anchors); diff != "" {
		t.Errorf("Anchors mismatch (-want +got):\n%s", diff)
	}
}

func TestComputeCards(t *testing.T) {
	m := knit.New()
	m.MakeLoop(ref("f0"))
	cards := []Card{
		{Label: "knit", Slots: []Slot{{0, -1}, {0, 0}, {0, 1}}},
		{Label: "miss", Slots: []Slot{{0, 0}}},
	}
	f := mustCompute(t, m, WithCards(cards))

	if len(f.Tiles) != 2 {
		t.Fatalf("len(Tiles) = %d, want 2", len(f.Tiles))
	}
	knitTile, missTile := f.Tiles[0].Box, f.Tiles[1].Box
	if knitTile.Top != 70 || !approx(knitTile.Left, 9.9) || !approx(knitTile.Right, 26.1) {
		t.Errorf("knit tile = %+v", knitTile)
	}
	if !approx(missTile.Top, 71.1) || !approx(missTile.CenterX(), 18) {
		t.Errorf("miss tile = %+v", missTile)
	}
	if !approx(f.Height, 72.1) {
		t.Errorf("Height = %v, want 72.1", f.Height)
	}
}

func TestComputeDeterministic(t *testing.T) {
	build := func() *knit.Machine {
		m := knit.New()
		a := m.MakeLoop(ref("f0"))
		b := m.MakeLoop(ref("b1"))
		m.MakeLoop(ref("f1"))
		if _, err := m.Connect(knit.Port{Item: a, Side: knit.Right}, knit.Port{Item: b, Side: knit.Left}, m.NewSlack(3)); err != nil {
			t.Fatal(err)
		}
		if _, err := m.Xfer(ref("b1"), ref("f1")); err != nil {
			t.Fatal(err)
		}
		return m
	}
	first := mustCompute(t, build(), WithStep(1))
	second := mustCompute(t, build(), WithStep(1))
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("frames differ (-first +second):\n%s", diff)
	}
}

func TestComputeRejectsBadParams(t *testing.T) {
	p := DefaultParams()
	p.NeedleSpacing = 0
	if _, err := Compute(knit.New(), p); err == nil {
		t.Fatal("Compute() error = nil, want error")
	}
}
