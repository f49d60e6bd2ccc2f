package knit

import (
	"errors"
	"math/rand/v2"
	"slices"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func n(s string) NeedleRef { return MustParseNeedle(s) }

func mustLink(t *testing.T, m *Machine, a ItemID, as Side, b ItemID, bs Side, slack SlackID) LinkID {
	t.Helper()
	id, err := m.Connect(Port{Item: a, Side: as}, Port{Item: b, Side: bs}, slack)
	if err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	return id
}

func kindsOf(m *Machine, ref string) []Kind {
	var ks []Kind
	for _, id := range m.Region(n(ref)) {
		ks = append(ks, m.Item(id).Kind)
	}
	return ks
}

func TestXferAcrossWithoutObstruction(t *testing.T) {
	m := New(WithMaxRacking(2))
	a := m.MakeLoop(n("f0"))
	b := m.MakeLoop(n("f2"))
	mustLink(t, m, a, Right, b, Left, NoSlack)

	st, err := m.Xfer(n("f0"), n("b0"))
	if err != nil {
		t.Fatalf("Xfer(f0, b0) error: %v", err)
	}
	if st.Captured != 0 || st.Moved != 1 {
		t.Errorf("stats = %+v, want 1 moved and nothing captured", st)
	}
	if got := m.Region(n("b0")); !slices.Equal(got, []ItemID{a}) {
		t.Errorf("b0 = %v, want [%d]", got, a)
	}
	if m.Count(KindPinch) != 0 {
		t.Errorf("pinches = %d, want 0", m.Count(KindPinch))
	}

	if _, err := m.Xfer(n("b0"), n("f2")); err != nil {
		t.Fatalf("Xfer(b0, f2) error: %v", err)
	}
	if got := m.Region(n("f2")); !slices.Equal(got, []ItemID{b, a}) {
		t.Errorf("f2 = %v, want [%d %d]", got, b, a)
	}
	if m.LinkCount() != 1 {
		t.Errorf("LinkCount() = %d, want 1", m.LinkCount())
	}
	if m.Racking() != 2 {
		t.Errorf("Racking() = %d, want 2", m.Racking())
	}
	if !m.Item(a).Moved || m.Item(b).Moved {
		t.Errorf("moved flags: a=%v b=%v, want true false", m.Item(a).Moved, m.Item(b).Moved)
	}
	if err := m.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
}

func TestXferCarriesLinksOfMovingItems(t *testing.T) {
	m := New()
	x := m.MakeLoop(n("f2"))
	a := m.MakeLoop(n("f0"))
	// The only visited end of this link is x's right side on f2, which
	// lies on the walked arc from f0 to b3.
	mustLink(t, m, x, Right, a, Left, NoSlack)

	st, err := m.Xfer(n("f0"), n("b3"))
	if err != nil {
		t.Fatalf("Xfer(f0, b3) error: %v", err)
	}
	if st.Captured != 0 || m.Count(KindPinch) != 0 {
		t.Errorf("captured %d, pinches %d, want none", st.Captured, m.Count(KindPinch))
	}
	if m.LinkCount() != 1 {
		t.Errorf("LinkCount() = %d, want 1", m.LinkCount())
	}
	if err := m.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
}

func TestXferCapturesAndReleasesCrossingLink(t *testing.T) {
	m := New()
	a := m.MakeLoop(n("f0"))
	b := m.MakeLoop(n("f3"))
	c := m.MakeLoop(n("b1"))
	slack := m.NewSlack(3)
	mustLink(t, m, a, Right, b, Left, slack)

	st, err := m.Xfer(n("b1"), n("f1"))
	if err != nil {
		t.Fatalf("Xfer(b1, f1) error: %v", err)
	}
	if st.Captured != 1 || st.Released != 0 {
		t.Errorf("stats = %+v, want one capture and no release", st)
	}
	if got, want := kindsOf(m, "f1"), []Kind{KindPinch, KindLoop}; !slices.Equal(got, want) {
		t.Fatalf("f1 = %v, want %v", got, want)
	}
	if m.Count(KindPinch) != 1 || m.LinkCount() != 2 {
		t.Fatalf("pinches = %d links = %d, want 1 and 2", m.Count(KindPinch), m.LinkCount())
	}
	pinch := m.Region(n("f1"))[0]
	p := m.Item(pinch)
	if l := m.Link(p.Left); l.Other(Port{Item: pinch, Side: Left}) != (Port{Item: a, Side: Right}) || l.Slack != slack {
		t.Errorf("pinch left link = %+v, want a.r with slack %d", l, slack)
	}
	if l := m.Link(p.Right); l.Other(Port{Item: pinch, Side: Right}) != (Port{Item: b, Side: Left}) || l.Slack != slack {
		t.Errorf("pinch right link = %+v, want b.l with slack %d", l, slack)
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("Validate() error: %v", err)
	}

	st, err = m.Xfer(n("f1"), n("b1"))
	if err != nil {
		t.Fatalf("Xfer(f1, b1) error: %v", err)
	}
	if st.Released != 1 {
		t.Errorf("Released = %d, want 1", st.Released)
	}
	if got := m.Region(n("b1")); !slices.Equal(got, []ItemID{c}) {
		t.Errorf("b1 = %v, want [%d]", got, c)
	}
	links := m.Links()
	if len(links) != 1 {
		t.Fatalf("links = %d, want 1", len(links))
	}
	want := Link{ID: links[0].ID, A: Port{Item: a, Side: Right}, B: Port{Item: b, Side: Left}, Slack: slack}
	got := links[0]
	if got.A != want.A {
		got.A, got.B = got.B, got.A
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("spliced link mismatch (-want +got):\n%s", diff)
	}
	if m.Count(KindPinch) != 0 {
		t.Errorf("pinches = %d, want 0", m.Count(KindPinch))
	}
	if err := m.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
}

func TestXferDegenerateCrossing(t *testing.T) {
	setup := func(opts ...Option) *Machine {
		m := New(opts...)
		m.MakeLoop(n("f0"))
		c := m.MakeLoop(n("b0"))
		d := m.MakeLoop(n("b0"))
		id, err := m.Connect(Port{Item: c, Side: Right}, Port{Item: d, Side: Left}, NoSlack)
		if err != nil || id == NoLink {
			t.Fatalf("Connect() error: %v", err)
		}
		return m
	}

	tests := []struct {
		name     string
		opts     []Option
		captured int
	}{
		{"matched by default", nil, 0},
		{"pinched when enabled", []Option{WithDegeneratePinch()}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := setup(tt.opts...)
			st, err := m.Xfer(n("f0"), n("b0"))
			if err != nil {
				t.Fatalf("Xfer() error: %v", err)
			}
			if st.Captured != tt.captured {
				t.Errorf("Captured = %d, want %d", st.Captured, tt.captured)
			}
			if err := m.Validate(); err != nil {
				t.Errorf("Validate() error: %v", err)
			}
		})
	}
}

func TestXferPreconditions(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(m *Machine)
		from, to string
		want     error
	}{
		{"same bed", nil, "f0", "f1", ErrSameBed},
		{"slider to slider", nil, "fs0", "bs0", ErrSliderToSlider},
		{"over source slider", func(m *Machine) {
			m.MakeLoop(n("f0"))
			m.MakeLoop(n("fs0"))
		}, "f0", "b0", ErrOverSlider},
		{"over destination slider", func(m *Machine) {
			m.MakeLoop(n("f0"))
			m.MakeLoop(n("bs0"))
		}, "f0", "b0", ErrOverSlider},
		{"racking limit", func(m *Machine) {
			m.MakeLoop(n("f0"))
		}, "f0", "b3", ErrRackingLimit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(WithMaxRacking(2))
			if tt.setup != nil {
				tt.setup(m)
			}
			before := m.Save("")
			_, err := m.Xfer(n(tt.from), n(tt.to))
			if !errors.Is(err, tt.want) {
				t.Fatalf("Xfer() error = %v, want %v", err, tt.want)
			}
			if diff := cmp.Diff(before, m.Save("")); diff != "" {
				t.Errorf("failed transfer changed state (-before +after):\n%s", diff)
			}
		})
	}
}

func TestXferEmptySourceIsNoop(t *testing.T) {
	m := New()
	a := m.MakeLoop(n("f0"))
	b := m.MakeLoop(n("f2"))
	mustLink(t, m, a, Right, b, Left, NoSlack)
	m.AddNeedle(NeedleKey{Bed: Back, Index: 1})

	before := m.Save("")
	st, err := m.Xfer(n("b1"), n("f3"))
	if err != nil {
		t.Fatalf("Xfer() error: %v", err)
	}
	if st.Moved != 0 || st.Captured != 0 {
		t.Errorf("stats = %+v, want nothing moved", st)
	}
	after := m.Save("")
	if diff := cmp.Diff(before.Needles, after.Needles); diff != "" {
		t.Errorf("needles changed (-before +after):\n%s", diff)
	}
	if diff := cmp.Diff(before.Links, after.Links); diff != "" {
		t.Errorf("links changed (-before +after):\n%s", diff)
	}
	if m.HasNeedle(NeedleKey{Bed: Front, Index: 3}) {
		t.Error("empty transfer created its destination needle")
	}
	if m.Racking() != 2 {
		t.Errorf("Racking() = %d, want 2", m.Racking())
	}
}

func TestXferRackingSign(t *testing.T) {
	tests := []struct {
		from, to string
		want     int
	}{
		{"f0", "b2", -2},
		{"f2", "b0", 2},
		{"b0", "f2", 2},
		{"bs1", "f0", -1},
		{"f1", "bs1", 0},
	}
	for _, tt := range tests {
		t.Run(tt.from+"-"+tt.to, func(t *testing.T) {
			m := New()
			if _, err := m.Xfer(n(tt.from), n(tt.to)); err != nil {
				t.Fatalf("Xfer() error: %v", err)
			}
			if m.Racking() != tt.want {
				t.Errorf("Racking() = %d, want %d", m.Racking(), tt.want)
			}
		})
	}
}

func TestXferSliderRoundTrip(t *testing.T) {
	m := New()
	a := m.MakeLoop(n("f0"))
	b := m.MakeLoop(n("f1"))
	mustLink(t, m, a, Right, b, Left, NoSlack)

	steps := [][2]string{{"f0", "bs0"}, {"f1", "b1"}, {"bs0", "f0"}}
	for _, s := range steps {
		if _, err := m.Xfer(n(s[0]), n(s[1])); err != nil {
			t.Fatalf("Xfer(%s, %s) error: %v", s[0], s[1], err)
		}
		if err := m.Validate(); err != nil {
			t.Fatalf("Validate() after %v: %v", s, err)
		}
	}
	if got := m.Region(n("f0")); !slices.Equal(got, []ItemID{a}) {
		t.Errorf("f0 = %v, want [%d]", got, a)
	}
	if m.Count(KindLoop) != 2 {
		t.Errorf("loops = %d, want 2", m.Count(KindLoop))
	}
}

// TestXferRandomWalk checks conservation, port consistency and the snapshot
// round trip over a long deterministic sequence of transfers.
func TestXferRandomWalk(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	m := New(WithMaxRacking(3))

	var prev ItemID = NoItem
	for i := -3; i <= 3; i += 2 {
		bed := "f"
		if i > 0 {
			bed = "b"
		}
		id := m.MakeLoop(MustParseNeedle(bed + strconv.Itoa(i)))
		if prev != NoItem {
			mustLink(t, m, prev, Right, id, Left, m.NewSlack(float64(i+5)))
		}
		prev = id
	}
	loops := m.Count(KindLoop)

	for step := 0; step < 400; step++ {
		from := NeedleRef{Bed: Bed(rng.IntN(2)), Slider: rng.IntN(5) == 0, Index: rng.IntN(7) - 3}
		to := NeedleRef{Bed: from.Bed.Opposite(), Slider: !from.Slider && rng.IntN(5) == 0, Index: from.Index + rng.IntN(5) - 2}

		before := m.Save("")
		_, err := m.Xfer(from, to)
		if err != nil {
			if diff := cmp.Diff(before, m.Save("")); diff != "" {
				t.Fatalf("step %d: failed Xfer(%s, %s) changed state:\n%s", step, from, to, diff)
			}
			continue
		}
		if got := m.Count(KindLoop); got != loops {
			t.Fatalf("step %d: loops = %d, want %d", step, got, loops)
		}
		if err := m.Validate(); err != nil {
			t.Fatalf("step %d: Validate() after Xfer(%s, %s): %v", step, from, to, err)
		}

		snap := m.Save("step")
		r := New(WithMaxRacking(3))
		if err := r.Load(snap); err != nil {
			t.Fatalf("step %d: Load() error: %v", step, err)
		}
		if diff := cmp.Diff(snap, r.Save("step")); diff != "" {
			t.Fatalf("step %d: round trip mismatch (-saved +reloaded):\n%s", step, diff)
		}
		m.ClearMarks()
	}
}
