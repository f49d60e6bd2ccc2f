package styles

import (
	"bytes"
	"strings"
	"testing"
)

func TestByName(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"", "simple", false},
		{"simple", "simple", false},
		{"MONO", "mono", false},
		{"handdrawn", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := ByName(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ByName(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if err == nil && s.Name() != tt.want {
				t.Errorf("Name() = %q, want %q", s.Name(), tt.want)
			}
		})
	}
}

func TestStrainColor(t *testing.T) {
	tests := []struct {
		name string
		link Link
		want string
	}{
		{"no slack", Link{Strain: 5}, "#444"},
		{"relaxed", Link{Slack: true}, "#3caa40"},
		{"taut", Link{Slack: true, Strain: 1}, "#f02840"},
		{"over", Link{Slack: true, Strain: 3}, "#f02840"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := strainColor(tt.link); got != tt.want {
				t.Errorf("strainColor() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTruncateLabel(t *testing.T) {
	tests := []struct {
		text string
		w    float64
		want string
	}{
		{"knit", 100, "knit"},
		{"knit + f12 3", 2.7, "kn.."},
		{"xy", 0.1, "xy"},
	}
	for _, tt := range tests {
		if got := TruncateLabel(tt.text, tt.w, 1); got != tt.want {
			t.Errorf("TruncateLabel(%q, %v) = %q, want %q", tt.text, tt.w, got, tt.want)
		}
	}
}

func TestRenderItemEscapesAndMarks(t *testing.T) {
	var buf bytes.Buffer
	Simple{}.RenderItem(&buf, Item{ID: "7", Kind: "loop", W: 8, H: 2, Moved: true})
	out := buf.String()
	for _, want := range []string{`id="item-7"`, `class="loop moved"`, `rx="1.00"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}

	buf.Reset()
	Mono{}.RenderText(&buf, 0, 0, "a<b")
	if !strings.Contains(buf.String(), "a&lt;b") {
		t.Errorf("text not escaped: %q", buf.String())
	}
}
