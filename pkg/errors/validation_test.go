package errors

import (
	"strings"
	"testing"
)

func TestValidateScript(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"single transfer", "xfer f0 b0\n", false},
		{"tabs and CRLF", "x-start\tf0 f1\r\nf0 b0\r\n", false},
		{"header", ";!knitout-2\n;;Carriers: 1 2\n", false},

		{"empty", "", true},
		{"blank", "  \n\t\n", true},
		{"too large", strings.Repeat("f0 b0\n", MaxScriptSize/6+1), true},
		{"null byte", "f0 b0\x00", true},
		{"control char", "f0\x01b0", true},
		{"invalid utf8", "f0 b0 \xff", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateScript(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateScript(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidScript) {
				t.Errorf("code = %v, want %v", GetCode(err), ErrCodeInvalidScript)
			}
		})
	}
}

func TestValidateCarrierName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"digit", "1", false},
		{"letters", "A", false},
		{"dashed", "yarn-2", false},

		{"empty", "", true},
		{"space", "a b", true},
		{"too long", strings.Repeat("c", 17), true},
		{"comma", "1,2", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCarrierName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCarrierName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "out.svg", false},
		{"nested", "frames/step-01.json", false},
		{"absolute", "/tmp/out.svg", false},
		{"dotted name", "a..b.svg", false},

		{"empty", "", true},
		{"traversal", "frames/../../etc/passwd", true},
		{"null byte", "out\x00.svg", true},
		{"too long", strings.Repeat("a", 501), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
