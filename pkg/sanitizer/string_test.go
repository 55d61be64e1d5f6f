package sanitizer

import "testing"

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"  North field  ", "North field"},
		{"North\t\tfield", "North field"},
		{"North \n field", "North field"},
		{"   ", ""},
		{"", ""},
		{"plot-7b", "plot-7b"},
	}

	for _, tt := range tests {
		if got := TrimAndNormalize(tt.input); got != tt.want {
			t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestTrimAndNormalize_Idempotent(t *testing.T) {
	input := "  North   field  "
	once := TrimAndNormalize(input)
	twice := TrimAndNormalize(once)
	if once != twice {
		t.Errorf("not idempotent: %q vs %q", once, twice)
	}
}

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{" open ", "OPEN"},
		{"Reserved", "RESERVED"},
		{"CANCELLED", "CANCELLED"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeStatus(tt.input); got != tt.want {
			t.Errorf("NormalizeStatus(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
