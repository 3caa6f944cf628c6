package neurochain

import (
	"context"
	"strings"

	"github.com/stellarzerolabs/neurochain/dsl"
)

// ExecutionSucceeded is returned by Analyze when a script runs cleanly but
// prints nothing.
const ExecutionSucceeded = "✅ Execution succeeded."

// Preprocess strips a BOM, normalizes line endings to LF, and expands tabs
// to four spaces so the indentation-sensitive lexer sees consistent input.
func Preprocess(input string) string {
	s := strings.TrimPrefix(input, "\uFEFF")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.ReplaceAll(s, "\t", "    ")
}

// NormalizeLegacy rewrites older script phrasings before tokenization:
// line-start say/print become neuro, and an inline "if cond: command"
// expands into a two-line indented block.
func NormalizeLegacy(input string) string {
	var out strings.Builder
	out.Grow(len(input))

	for _, line := range strings.Split(input, "\n") {
		trimmed := strings.TrimLeft(line, " ")
		indent := line[:len(line)-len(trimmed)]

		converted := line
		if rest, ok := sayPrintRest(trimmed); ok {
			converted = indent + "neuro" + rest
		}

		if idx := strings.Index(converted, ":"); idx >= 0 {
			head := converted[:idx+1]
			tail := strings.TrimLeft(converted[idx+1:], " ")

			headTrim := strings.ToLower(strings.TrimLeft(head, " "))
			isCtrl := strings.HasPrefix(headTrim, "if ") ||
				strings.HasPrefix(headTrim, "elif ") ||
				strings.HasPrefix(headTrim, "else")

			if isCtrl && tail != "" {
				if rest, ok := sayPrintRest(tail); ok {
					tail = "neuro" + rest
				}
				converted = head + "\n" + indent + "    " + tail
			}
		}

		converted = replaceFold(converted, ": say", ": neuro")
		converted = replaceFold(converted, ": print", ": neuro")

		out.WriteString(converted)
		out.WriteByte('\n')
	}

	return out.String()
}

// sayPrintRest reports whether s starts with a say or print command and
// returns what follows the keyword. A boundary character after the keyword
// keeps words like "sayonara" intact.
func sayPrintRest(s string) (string, bool) {
	low := strings.ToLower(s)
	for _, kw := range []string{"say", "print"} {
		if !strings.HasPrefix(low, kw) {
			continue
		}
		rest := s[len(kw):]
		if rest == "" || strings.HasPrefix(rest, " ") || strings.HasPrefix(rest, `"`) ||
			strings.HasPrefix(rest, "'") || strings.HasPrefix(rest, "(") {
			return rest, true
		}
	}
	return "", false
}

// replaceFold is a case-insensitive replace for ASCII needles.
func replaceFold(haystack, needle, replacement string) string {
	low := strings.ToLower(haystack)
	nlow := strings.ToLower(needle)
	if nlow == "" || len(nlow) > len(low) {
		return haystack
	}

	var out strings.Builder
	i := 0
	for {
		j := strings.Index(low[i:], nlow)
		if j < 0 {
			out.WriteString(haystack[i:])
			return out.String()
		}
		out.WriteString(haystack[i : i+j])
		out.WriteString(replacement)
		i += j + len(nlow)
	}
}

// Analyze runs a whole script through the pipeline and returns what it
// printed, or a success marker when it printed nothing. The interpreter
// keeps its variables across calls, so sequential Analyze calls share
// state.
func Analyze(ctx context.Context, input string, in *dsl.Interpreter) (string, error) {
	norm := NormalizeLegacy(Preprocess(input))

	tokens, err := dsl.Tokenize(norm)
	if err != nil {
		return "", err
	}
	if err := in.Run(ctx, dsl.Parse(tokens)); err != nil {
		return "", err
	}

	out := in.TakeOutput()
	if strings.TrimSpace(out) == "" {
		return ExecutionSucceeded, nil
	}
	return out, nil
}

// AnalyzeBlocks is an older name for Analyze, kept for callers that fed the
// engine block by block.
func AnalyzeBlocks(ctx context.Context, input string, in *dsl.Interpreter) (string, error) {
	return Analyze(ctx, input, in)
}

// NewInterpreter builds an interpreter wired to the classifier loader and
// the settings in cfg.
func NewInterpreter(cfg Config, opts ...dsl.Option) *dsl.Interpreter {
	base := []dsl.Option{
		dsl.WithLoader(ClassifierLoader()),
		dsl.WithThreshold(cfg.IntentThreshold),
		dsl.WithMacroModelPath(cfg.MacroModelPath),
		dsl.WithMaxMacroDepth(cfg.MaxMacroDepth),
	}
	return dsl.NewInterpreter(append(base, opts...)...)
}
