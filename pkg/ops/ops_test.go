package ops

import (
	"testing"

	"github.com/matzehuels/knitstack/pkg/knit"
)

func TestKindNames(t *testing.T) {
	for _, k := range Kinds() {
		got, ok := KindOf(k.String())
		if !ok || got != k {
			t.Errorf("KindOf(%q) = %v, %v; want %v", k.String(), got, ok, k)
		}
	}
	if _, ok := KindOf("drop"); ok {
		t.Error("KindOf(drop) should be unknown")
	}
}

func TestOpStrings(t *testing.T) {
	f1 := knit.MustParseNeedle("f1")
	tests := []struct {
		op   Op
		want string
		kind Kind
	}{
		{Xfer{From: f1, To: knit.MustParseNeedle("bs2")}, "xfer f1 bs2", KindXfer},
		{Rack{Racking: -0.25}, "rack -0.25", KindRack},
		{Knit(Increasing, f1, "3"), "knit + f1 3", KindKnit},
		{Tuck(Decreasing, f1, "1", "2"), "tuck - f1 1 2", KindTuck},
		{Miss(Increasing, f1), "miss + f1", KindMiss},
		{Split{Dir: Decreasing, Needle: f1, Target: knit.MustParseNeedle("b1"), Carriers: []string{"4"}}, "split - f1 b1 4", KindSplit},
		{Pause{}, "pause", KindPause},
		{In("1"), "in 1", KindIn},
		{Inhook("1", "2"), "inhook 1 2", KindInhook},
		{Releasehook("1"), "releasehook 1", KindReleasehook},
		{Out("5"), "out 5", KindOut},
		{Outhook("5"), "outhook 5", KindOuthook},
		{StitchSize{Length: 5, Tension: 0.5}, "stitch 5 0.5", KindStitch},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.op.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
			if tt.op.Kind() != tt.kind {
				t.Errorf("Kind() = %v, want %v", tt.op.Kind(), tt.kind)
			}
		})
	}
}

func TestRackIntegral(t *testing.T) {
	if !(Rack{Racking: -2}).Integral() {
		t.Error("rack -2 should be integral")
	}
	if (Rack{Racking: 0.25}).Integral() {
		t.Error("rack 0.25 should not be integral")
	}
}

func TestParseDirection(t *testing.T) {
	if d, err := ParseDirection("-"); err != nil || d != Decreasing {
		t.Errorf("ParseDirection(-) = %v, %v", d, err)
	}
	if _, err := ParseDirection("<"); err == nil {
		t.Error("ParseDirection(<) should fail")
	}
}
