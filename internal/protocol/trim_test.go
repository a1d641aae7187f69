package protocol

import "testing"

func TestTrimToLastNewline(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"newline at end", "one line\n", 9},
		{"interior newline", "full line\npartial", 10},
		{"two full lines with tail", "a\nb\ncdef", 4},
		{"no newline", "no line ending", 14},
		{"newline at position zero", "\nrest", 1},
		{"only a newline", "\n", 1},
		{"empty", "", 0},
		{"single byte", "x", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrimToLastNewline([]byte(tt.input)); got != tt.want {
				t.Errorf("TrimToLastNewline(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestTrimNeverReturnsZeroForNonEmptyInput(t *testing.T) {
	// Forward progress depends on every non-empty read keeping at least
	// one byte.
	inputs := []string{"\n", "x", "\nx", "x\n", "\n\n"}

	for _, in := range inputs {
		if got := TrimToLastNewline([]byte(in)); got == 0 {
			t.Errorf("TrimToLastNewline(%q) = 0, want > 0", in)
		}
	}
}
