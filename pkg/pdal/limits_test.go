package pdal

import "testing"

func TestLimits_String(t *testing.T) {
	tests := []struct {
		limits Limits
		want   string
	}{
		{Equal("Classification", 2), "Classification[2:2]"},
		{AtMost("Classification", 2), "Classification[:2]"},
		{AtMost("Z", 100), "Z[:100]"},
		{AtMost("Z", 1234.25), "Z[:1234.25]"},
		{Between("ScanAngleRank", -15, 15), "ScanAngleRank[-15:15]"},
		{Limits{Field: "Intensity"}, "Intensity[:]"},
	}

	for _, tt := range tests {
		if got := tt.limits.String(); got != tt.want {
			t.Errorf("expected %q, got %q", tt.want, got)
		}
	}
}
