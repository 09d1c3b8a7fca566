package logger

import "testing"

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		wantNil bool
	}{
		{in: "debug"},
		{in: "info"},
		{in: "warn"},
		{in: "error"},
		{in: "verbose", wantNil: true},
		{in: "", wantNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := parseLevel(tt.in)
			if (got == nil) != tt.wantNil {
				t.Errorf("parseLevel(%q) = %v, wantNil %v", tt.in, got, tt.wantNil)
			}
			if got != nil && got.String() != tt.in {
				t.Errorf("parseLevel(%q) = %s", tt.in, got.String())
			}
		})
	}
}

func TestWithKeepsLogger(t *testing.T) {
	l := New("error", false)
	child := l.With(String("component", "test"))
	if child == nil {
		t.Fatal("With() returned nil")
	}
	child.Debug("not emitted")
}
