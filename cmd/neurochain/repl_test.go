package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestReplIntercept(t *testing.T) {
	tests := []struct {
		input   string
		handled bool
		quit    bool
		want    string
	}{
		{"exit", true, true, "Exiting..."},
		{"version", true, false, "NeuroChain version"},
		{"--version", true, false, "NeuroChain version"},
		{"-v", true, false, "NeuroChain version"},
		{"about", true, false, "StellarZeroLabs"},
		{"--about", true, false, "StellarZeroLabs"},
		{"", true, false, ""},
		{`neuro "hello"`, false, false, ""},
		{"set x = 1", false, false, ""},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		handled, quit := replIntercept(tt.input, &buf)
		if handled != tt.handled || quit != tt.quit {
			t.Errorf("replIntercept(%q) = (%v, %v), want (%v, %v)",
				tt.input, handled, quit, tt.handled, tt.quit)
		}
		if tt.want != "" && !strings.Contains(buf.String(), tt.want) {
			t.Errorf("replIntercept(%q) output = %q, want substring %q",
				tt.input, buf.String(), tt.want)
		}
	}
}
