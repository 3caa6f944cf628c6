package neurochain

import (
	"context"
	"strings"
	"testing"

	"github.com/stellarzerolabs/neurochain/dsl"
)

func TestPreprocess(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"bom", "\uFEFFneuro \"hi\"", `neuro "hi"`},
		{"crlf", "a\r\nb", "a\nb"},
		{"bare cr", "a\rb", "a\nb"},
		{"tabs", "\tneuro \"hi\"", `    neuro "hi"`},
	}
	for _, c := range cases {
		if got := Preprocess(c.input); got != c.want {
			t.Errorf("Preprocess %s = %q, want %q", c.name, got, c.want)
		}
	}
}

func TestNormalizeLegacySayPrint(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{`say "hello"`, `neuro "hello"`},
		{`print "hello"`, `neuro "hello"`},
		{`Say "hello"`, `neuro "hello"`},
		{`print(x)`, `neuro(x)`},
		{"say name", "neuro name"},
	}
	for _, c := range cases {
		got := strings.TrimRight(NormalizeLegacy(c.input), "\n")
		if got != c.want {
			t.Errorf("NormalizeLegacy(%q) = %q, want %q", c.input, got, c.want)
		}
	}
}

func TestNormalizeLegacyKeepsSayonara(t *testing.T) {
	got := strings.TrimRight(NormalizeLegacy(`neuro "x"`+"\nsayonara"), "\n")
	if strings.Contains(got, "neuroonara") || !strings.Contains(got, "sayonara") {
		t.Errorf("NormalizeLegacy rewrote a word that only starts with say: %q", got)
	}
}

func TestNormalizeLegacyInlineIf(t *testing.T) {
	got := strings.TrimRight(NormalizeLegacy(`if x > 1: say "big"`), "\n")
	want := "if x > 1:\n    neuro \"big\""
	if got != want {
		t.Errorf("NormalizeLegacy inline if = %q, want %q", got, want)
	}
}

func TestNormalizeLegacyIndentedSay(t *testing.T) {
	got := strings.TrimRight(NormalizeLegacy(`    say "hi"`), "\n")
	if got != `    neuro "hi"` {
		t.Errorf("NormalizeLegacy kept indent wrong: %q", got)
	}
}

func TestAnalyzePrintsOutput(t *testing.T) {
	cfg := DefaultConfig()
	in := NewInterpreter(cfg)
	got, err := Analyze(context.Background(), "set x = 2 + 3\nneuro x", in)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if got != "5" {
		t.Errorf("Analyze() = %q, want 5", got)
	}
}

func TestAnalyzeSilentScriptSucceeds(t *testing.T) {
	in := NewInterpreter(DefaultConfig())
	got, err := Analyze(context.Background(), "set x = 1", in)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if got != ExecutionSucceeded {
		t.Errorf("Analyze() = %q, want %q", got, ExecutionSucceeded)
	}
}

func TestAnalyzeLegacySyntax(t *testing.T) {
	in := NewInterpreter(DefaultConfig())
	got, err := Analyze(context.Background(), `say "hello"`, in)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if got != "hello" {
		t.Errorf("Analyze() = %q, want hello", got)
	}
}

func TestAnalyzeLexError(t *testing.T) {
	in := NewInterpreter(DefaultConfig())
	_, err := Analyze(context.Background(), `neuro "unterminated`, in)
	if err == nil {
		t.Fatal("Analyze() expected lex error")
	}
}

func TestAnalyzeKeepsStateAcrossCalls(t *testing.T) {
	in := NewInterpreter(DefaultConfig())
	ctx := context.Background()
	if _, err := Analyze(ctx, "set counter = 41", in); err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	got, err := Analyze(ctx, "set counter = counter + 1\nneuro counter", in)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if got != "42" {
		t.Errorf("counter = %q, want 42", got)
	}
}

func TestNewInterpreterAppliesExtraOptions(t *testing.T) {
	var buf strings.Builder
	in := NewInterpreter(DefaultConfig(), dsl.WithOutputLog(&buf))
	if _, err := Analyze(context.Background(), `neuro "logged"`, in); err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if !strings.Contains(buf.String(), "logged") {
		t.Errorf("output log = %q, want the printed line mirrored", buf.String())
	}
}

func TestResolveModelPath(t *testing.T) {
	cases := []struct {
		id   string
		want string
		ok   bool
	}{
		{"sst2", "models/distilbert-sst2/model.onnx", true},
		{"toxic", "models/toxic_quantized/model.onnx", true},
		{"factcheck", "models/factcheck/model.onnx", true},
		{"intent", "models/intent/model.onnx", true},
		{"macro", "models/intent_macro/model.onnx", true},
		{"gpt2", "models/intent_macro/model.onnx", true},
		{"policy", "models/policy/model.onnx", true},
		{"nope", "", false},
	}
	for _, c := range cases {
		got, ok := ResolveModelPath("models", c.id)
		if got != c.want || ok != c.ok {
			t.Errorf("ResolveModelPath(models, %q) = %q, %v; want %q, %v",
				c.id, got, ok, c.want, c.ok)
		}
	}
}
