package metric

import (
	"testing"
	"time"
)

func TestCanonical(t *testing.T) {
	tests := []struct {
		field string
		want  Type
	}{
		{"installs", Downloads},
		{"new_customers", Downloads},
		{"units", Downloads},
		{"Installs", Downloads}, // case-insensitive
		{"proceeds", Revenue},
		{"revenue", Revenue},
		{"dau", ActiveUsers},
		{"active_subscriptions", ActiveSubscribers},
		{"clicks", Clicks},
		{"cost", Cost},
		{"some_new_field", Type("some_new_field")}, // unknown passes through
	}

	for _, tt := range tests {
		if got := Canonical(tt.field); got != tt.want {
			t.Errorf("Canonical(%q) = %q, want %q", tt.field, got, tt.want)
		}
	}
}

func TestMRRFromRevenue(t *testing.T) {
	if got := MRRFromRevenue(300); got != 10 {
		t.Errorf("MRRFromRevenue(300) = %v, want 10", got)
	}
	if got := MRRFromRevenue(0); got != 0 {
		t.Errorf("MRRFromRevenue(0) = %v, want 0", got)
	}
}

func TestDay(t *testing.T) {
	in := time.Date(2026, 8, 28, 13, 45, 12, 999, time.FixedZone("PST", -8*3600))
	d := Day(in)
	if d.Hour() != 0 || d.Minute() != 0 || d.Second() != 0 || d.Nanosecond() != 0 {
		t.Errorf("Day() left a time component: %v", d)
	}
	if d.Location() != time.UTC {
		t.Errorf("Day() location = %v, want UTC", d.Location())
	}
}
