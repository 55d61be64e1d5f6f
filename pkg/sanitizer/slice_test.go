package sanitizer

import (
	"reflect"
	"testing"
)

func TestNormalizeStatuses(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{
			name:  "dedupes after normalization",
			input: []string{"open", " OPEN ", "Reserved"},
			want:  []string{"OPEN", "RESERVED"},
		},
		{
			name:  "drops empties",
			input: []string{"", "  ", "cancelled"},
			want:  []string{"CANCELLED"},
		},
		{
			name:  "nil input yields empty slice",
			input: nil,
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeStatuses(tt.input); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NormalizeStatuses(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
