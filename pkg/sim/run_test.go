package sim

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	kerrors "github.com/matzehuels/knitstack/pkg/errors"
	"github.com/matzehuels/knitstack/pkg/knit"
	"github.com/matzehuels/knitstack/pkg/observability"
	"github.com/matzehuels/knitstack/pkg/playback"
	"github.com/matzehuels/knitstack/pkg/script"
)

const demo = `;!knitout-2
;;Carriers: 1 2 3
x-start f0 3 f2 * f4
first: xfer f0 b0
rack 1
in 3
knit + f1 3
`

func mustParse(t *testing.T, src string) *script.Script {
	t.Helper()
	sc, err := script.ParseString(src)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	return sc
}

type recorder struct {
	mu    sync.Mutex
	steps []int
	xfers []string
	fails []int
}

func (r *recorder) OnStep(_ context.Context, line int, _ string, _ int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps = append(r.steps, line)
}

func (r *recorder) OnXfer(_ context.Context, from, to string, _, _ int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.xfers = append(r.xfers, from+">"+to)
}

func (r *recorder) OnStepError(_ context.Context, line int, _ error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fails = append(r.fails, line)
}

func TestRun(t *testing.T) {
	rec := &recorder{}
	observability.SetSimulationHooks(rec)
	t.Cleanup(observability.Reset)

	h, err := Run(context.Background(), mustParse(t, demo))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	var labels []string
	var lines []int
	for _, s := range h.Steps() {
		labels = append(labels, s.Label)
		lines = append(lines, s.Line)
	}
	if diff := cmp.Diff([]string{InitLabel, "first", "rack 1", "in 3", "knit + f1 3"}, labels); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{0, 4, 5, 6, 7}, lines); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}

	start, _ := h.Step(0)
	wantInit := knit.Snapshot{
		Label: InitLabel,
		Needles: []knit.NeedleState{
			{Needle: "f0", Stack: "o<"},
			{Needle: "f2", Stack: "o<"},
			{Needle: "f4", Stack: "o<"},
		},
		Links:  []string{"f0.0.r 0 f2.0.l", "f2.0.r * f4.0.l"},
		Slacks: []float64{3},
	}
	if diff := cmp.Diff(wantInit, start.Snapshot); diff != "" {
		t.Errorf("init snapshot mismatch (-want +got):\n%s", diff)
	}

	first, _ := h.Step(1)
	wantFirst := knit.Snapshot{
		Label: "first",
		Needles: []knit.NeedleState{
			{Needle: "f0", Stack: "<"},
			{Needle: "f2", Stack: "o<"},
			{Needle: "f4", Stack: "o<"},
			{Needle: "b0", Stack: "O<"},
		},
		Links:  []string{"b0.0.r 0 f2.0.l", "f2.0.r * f4.0.l"},
		Slacks: []float64{3},
	}
	if diff := cmp.Diff(wantFirst, first.Snapshot); diff != "" {
		t.Errorf("first snapshot mismatch (-want +got):\n%s", diff)
	}

	rack, _ := h.Step(2)
	if rack.Snapshot.Racking != 1 || strings.ContainsAny(rack.Snapshot.Needles[3].Stack, "O!") {
		t.Errorf("rack step = %+v, want racking 1 with marks cleared", rack.Snapshot)
	}

	last, _ := h.Last()
	if diff := cmp.Diff([]string{"3"}, last.Active); diff != "" {
		t.Errorf("Active mismatch (-want +got):\n%s", diff)
	}
	if len(last.Cards) != 1 || last.Cards[0].Label != "knit + f1 3" {
		t.Errorf("Cards = %+v", last.Cards)
	}

	if diff := cmp.Diff([]int{4, 5, 6, 7}, rec.steps); diff != "" {
		t.Errorf("OnStep lines mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"f0>b0"}, rec.xfers); diff != "" {
		t.Errorf("OnXfer mismatch (-want +got):\n%s", diff)
	}
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		code   kerrors.Code
		line   int
		steps  int
		substr string
	}{
		{"same bed", "x-start f0\nxfer f0 b0\nxfer b0 b1\n", kerrors.ErrCodePrecondition, 3, 2, "opposite bed"},
		{"fractional rack", "rack 0.5\n", kerrors.ErrCodeUnsupported, 1, 1, "fractional racking"},
		{"racking limit", "x-max-racking 1\nrack 1\nrack 2\n", kerrors.ErrCodePrecondition, 3, 2, "racking out of range"},
		{"carrier not in", "knit + f1 1\n", kerrors.ErrCodePrecondition, 1, 1, "Carrier [1] is not marked to come in."},
		{"knit on slider", "in 1\nknit - fs2 1\n", kerrors.ErrCodePrecondition, 2, 2, "cannot knit on a slider"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			observability.SetSimulationHooks(rec)
			t.Cleanup(observability.Reset)

			h, err := Run(context.Background(), mustParse(t, tt.src))
			if err == nil {
				t.Fatal("Run() error = nil")
			}
			if got := kerrors.GetCode(err); got != tt.code {
				t.Errorf("code = %s, want %s", got, tt.code)
			}
			if got := kerrors.GetLine(err); got != tt.line {
				t.Errorf("line = %d, want %d", got, tt.line)
			}
			if !strings.Contains(kerrors.UserMessage(err), tt.substr) {
				t.Errorf("message %q does not contain %q", kerrors.UserMessage(err), tt.substr)
			}
			if h.Len() != tt.steps {
				t.Errorf("history has %d steps, want %d", h.Len(), tt.steps)
			}
			if diff := cmp.Diff([]int{tt.line}, rec.fails); diff != "" {
				t.Errorf("OnStepError mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	h, err := Run(ctx, mustParse(t, "rack 1\nrack 0\n"))
	if !kerrors.Is(err, kerrors.ErrCodeTimeout) {
		t.Fatalf("error = %v, want TIMEOUT", err)
	}
	if h.Len() != 1 {
		t.Errorf("history has %d steps, want only the initial one", h.Len())
	}
}

func TestRunHistoryOptions(t *testing.T) {
	h, err := Run(context.Background(), mustParse(t, "rack 2\n"),
		WithHistoryOptions(playback.WithUnwindRacking()))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	h.Seek(h.Len() - 1)
	if got := h.Next(); got.Label != playback.UnwindLabel {
		t.Errorf("Next() label = %q, want %q", got.Label, playback.UnwindLabel)
	}
}

func TestRunCarriersOverride(t *testing.T) {
	_, err := Run(context.Background(), mustParse(t, "in 1\n"), WithCarriers([]string{"A"}))
	if !kerrors.Is(err, kerrors.ErrCodePrecondition) {
		t.Fatalf("error = %v, want PRECONDITION_FAILED", err)
	}
	if !strings.Contains(err.Error(), "Carrier name [1] not in carrier list.") {
		t.Errorf("error = %v", err)
	}
}

func TestRunRecordsPasses(t *testing.T) {
	h, err := Run(context.Background(), mustParse(t, "x-start f0 f1\nf0 b1 , f1 b0\nrack 2\n"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	st, _ := h.Step(1)
	want := []playback.Pass{
		{From: "f", To: "b", Offset: 1, Xfers: 1, Racking: -1},
		{From: "f", To: "b", Offset: -1, Xfers: 1, Racking: 1},
	}
	if diff := cmp.Diff(want, st.Passes); diff != "" {
		t.Errorf("passes mismatch (-want +got):\n%s", diff)
	}
	if st.Snapshot.Racking != 1 {
		t.Errorf("step racking = %d, want 1", st.Snapshot.Racking)
	}

	if st, _ := h.Step(2); len(st.Passes) != 0 {
		t.Errorf("rack line recorded passes: %+v", st.Passes)
	}
	if st, _ := h.Step(0); len(st.Passes) != 0 {
		t.Errorf("initial step recorded passes: %+v", st.Passes)
	}
}
