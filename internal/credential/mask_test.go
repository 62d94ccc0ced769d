package credential

import (
	"testing"

	"github.com/Disguise-Ai/AplTrack-sub000/internal/provider"
)

func TestMaskValue(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"long value keeps edges", "sk_live_abcdefgh1234", "sk_l********1234"},
		{"short value fully masked", "abc123", "********"},
		{"boundary length fully masked", "123456789012", "********"},
		{"empty", "", "********"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaskValue(tt.in); got != tt.want {
				t.Errorf("MaskValue(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestMask(t *testing.T) {
	creds := provider.Credentials{
		"api_key":    "sk_live_abcdefgh1234",
		"project_id": "proj_123",
		"api_token":  "tok_abcdefghijklmnop",
	}
	masked := Mask(creds)

	if masked["api_key"] != "sk_l********1234" {
		t.Errorf("api_key = %q, want masked", masked["api_key"])
	}
	if masked["api_token"] != "tok_********mnop" {
		t.Errorf("api_token = %q, want masked", masked["api_token"])
	}
	if masked["project_id"] != "proj_123" {
		t.Errorf("project_id = %q, want passthrough", masked["project_id"])
	}

	// Original bundle untouched
	if creds["api_key"] != "sk_live_abcdefgh1234" {
		t.Error("Mask mutated the input bundle")
	}
}
