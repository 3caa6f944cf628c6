package dsl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Model is a loaded classifier. Predict returns the winning label for a
// text; PredictWithScore also returns the softmax confidence of that label.
type Model interface {
	Predict(ctx context.Context, text string) (string, error)
	PredictWithScore(ctx context.Context, text string) (string, float32, error)
	IsMacroModel() bool
}

// Loader opens a classifier model by path.
type Loader func(path string) (Model, error)

// ModelLoadError reports a model that could not be opened. It is the one
// statement failure that aborts a run.
type ModelLoadError struct {
	Path string
	Err  error
}

func (e *ModelLoadError) Error() string {
	return fmt.Sprintf("failed to load model from %s: %v", e.Path, e.Err)
}

func (e *ModelLoadError) Unwrap() error { return e.Err }

// ErrMacroDepth is returned when macro expansion recurses past the
// configured limit.
var ErrMacroDepth = errors.New("macro expansion too deep")

// DefaultThreshold is the minimum classifier confidence for a macro intent
// label to be trusted over the keyword fallback.
const DefaultThreshold = 0.35

// DefaultMaxMacroDepth bounds recursive macro expansion.
const DefaultMaxMacroDepth = 16

// Interpreter executes parsed statements. Variables hold strings; printed
// lines are buffered and fetched with TakeOutput, so the caller decides
// where they go.
type Interpreter struct {
	env        map[string]string
	model      Model
	macroModel Model
	output     []string

	loader         Loader
	threshold      float32
	macroModelPath string
	maxMacroDepth  int
	macroDepth     int
	outputLog      io.Writer
	rawLog         io.Writer
	logger         *slog.Logger
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithLoader sets the function used to open classifier models. Without one,
// every model reference degrades the way a failed prediction does.
func WithLoader(l Loader) Option {
	return func(i *Interpreter) { i.loader = l }
}

// WithThreshold sets the macro intent confidence threshold.
func WithThreshold(t float32) Option {
	return func(i *Interpreter) { i.threshold = t }
}

// WithMacroModelPath sets the model loaded on demand for macro statements
// when no macro-capable model has been loaded with an AI statement.
func WithMacroModelPath(p string) Option {
	return func(i *Interpreter) { i.macroModelPath = p }
}

// WithMaxMacroDepth bounds recursive macro expansion.
func WithMaxMacroDepth(n int) Option {
	return func(i *Interpreter) {
		if n > 0 {
			i.maxMacroDepth = n
		}
	}
}

// WithOutputLog mirrors every printed line to w.
func WithOutputLog(w io.Writer) Option {
	return func(i *Interpreter) { i.outputLog = w }
}

// WithRawLog writes macro classification results and generated source to w.
func WithRawLog(w io.Writer) Option {
	return func(i *Interpreter) { i.rawLog = w }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(i *Interpreter) { i.logger = l }
}

func NewInterpreter(opts ...Option) *Interpreter {
	i := &Interpreter{
		env:           make(map[string]string),
		threshold:     DefaultThreshold,
		maxMacroDepth: DefaultMaxMacroDepth,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Var returns the value of a variable.
func (in *Interpreter) Var(name string) (string, bool) {
	v, ok := in.env[name]
	return v, ok
}

// SetVar assigns a variable directly, bypassing expression evaluation.
func (in *Interpreter) SetVar(name, value string) {
	in.env[name] = value
}

// TakeOutput returns the buffered printed lines joined by newlines and
// clears the buffer.
func (in *Interpreter) TakeOutput() string {
	out := strings.Join(in.output, "\n")
	in.output = in.output[:0]
	return out
}

// ClearOutput drops any buffered printed lines.
func (in *Interpreter) ClearOutput() {
	in.output = in.output[:0]
}

func (in *Interpreter) emit(msg string) {
	in.output = append(in.output, msg)
	if in.outputLog != nil {
		fmt.Fprintf(in.outputLog, "neuro: %s\n", msg)
	}
}

func (in *Interpreter) rawLogf(label, content string) {
	if in.rawLog == nil {
		return
	}
	fmt.Fprintf(in.rawLog, ">>> %s\n%s\n----\n", label, content)
}

// Run executes statements in order. Arithmetic and prediction failures
// degrade into visible output or false conditions; only a failed model load
// or runaway macro expansion stops the run.
func (in *Interpreter) Run(ctx context.Context, stmts []Statement) error {
	for _, s := range stmts {
		if err := in.runStmt(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

func (in *Interpreter) runStmt(ctx context.Context, s Statement) error {
	switch st := s.(type) {
	case *AIStmt:
		return in.loadModel(st.Path)

	case *NeuroStmt:
		in.emit(in.neuroArg(st.Arg))

	case *SetStmt:
		in.env[st.Name] = strings.TrimSpace(in.evalExpr(st.Expr))

	case *SetFromAIStmt:
		// A missing model or failed prediction stores the prompt as-is.
		val := strings.TrimSpace(st.Prompt)
		if in.model != nil {
			if pred, err := in.model.Predict(ctx, st.Prompt); err == nil {
				val = strings.TrimSpace(pred)
			}
		}
		in.env[st.Name] = val

	case *MacroStmt:
		return in.runMacro(ctx, st.Prompt)

	case *IfStmt:
		if in.evalBool(ctx, st.Cond) {
			return in.Run(ctx, st.Then)
		}
		for _, e := range st.Elifs {
			if in.evalBool(ctx, e.Cond) {
				return in.Run(ctx, e.Body)
			}
		}
		return in.Run(ctx, st.Else)
	}
	return nil
}

func (in *Interpreter) loadModel(path string) error {
	if in.loader == nil {
		return &ModelLoadError{Path: path, Err: errors.New("no model loader configured")}
	}
	m, err := in.loader(path)
	if err != nil {
		return &ModelLoadError{Path: path, Err: err}
	}
	in.model = m
	in.logger.Info("model loaded", "path", path)
	if m.IsMacroModel() {
		in.macroModel = m
	}
	return nil
}

// neuroArg resolves a neuro argument: a quoted literal prints verbatim, a
// bare word prints its variable value when defined, its own text otherwise.
func (in *Interpreter) neuroArg(arg string) string {
	if isQuoted(arg) {
		return stripQuotes(arg)
	}
	if v, ok := in.env[arg]; ok {
		return strings.TrimSpace(v)
	}
	return strings.TrimSpace(stripQuotes(arg))
}

func (in *Interpreter) evalExpr(expr Expr) string {
	switch e := expr.(type) {
	case *NumberExpr:
		return e.Value
	case *StringExpr:
		return stripQuotes(e.Value)
	case *IdentExpr:
		return resolveValue(in.env, e.Name)
	case *BinaryExpr:
		lraw := in.evalExpr(e.Left)
		rraw := in.evalExpr(e.Right)
		l := strings.TrimSpace(lraw)
		r := strings.TrimSpace(rraw)
		switch e.Op {
		case TokenPlus:
			return addValues(lraw, rraw)
		case TokenMinus, TokenStar, TokenSlash:
			return numericOp(e.Op, l, r)
		case TokenPercent:
			return moduloValues(l, r)
		case TokenEq:
			return boolString(eqCase(l, r))
		case TokenNe:
			return boolString(!eqCase(l, r))
		case TokenGt, TokenLt, TokenGe, TokenLe:
			return boolString(compareValues(e.Op, l, r))
		}
	}
	return ""
}

// evalBool evaluates a condition. Both sides of and/or always run, so a
// classifier call on the right side happens even when the left side already
// decides the result.
func (in *Interpreter) evalBool(ctx context.Context, b BoolExpr) bool {
	switch e := b.(type) {
	case *PredictEquals:
		eq, ok := in.predictEq(ctx, e.Input, e.Label)
		return ok && eq
	case *PredictNotEquals:
		eq, ok := in.predictEq(ctx, e.Input, e.Label)
		return ok && !eq
	case *Compare:
		l := resolveValue(in.env, e.Left)
		r := resolveValue(in.env, e.Right)
		return compareValues(e.Op, strings.TrimSpace(l), strings.TrimSpace(r))
	case *BoolBinary:
		lv := in.evalBool(ctx, e.Left)
		rv := in.evalBool(ctx, e.Right)
		if e.Op == TokenAnd {
			return lv && rv
		}
		return lv || rv
	}
	return false
}

// predictEq routes equality conditions by the shape of the left operand. A
// quoted literal goes through the classifier and its predicted label is
// compared with the right side; a bare word compares directly, resolving
// variables on both sides. The second return is false when the classifier is
// needed but unavailable or failing, which makes == and != both false.
func (in *Interpreter) predictEq(ctx context.Context, input, label string) (bool, bool) {
	if isQuoted(input) {
		if in.model == nil {
			return false, false
		}
		pred, err := in.model.Predict(ctx, stripQuotes(input))
		if err != nil {
			return false, false
		}
		return eqCase(pred, stripQuotes(label)), true
	}
	l := resolveValue(in.env, input)
	r := resolveValue(in.env, label)
	return eqCase(l, r), true
}

func (in *Interpreter) ensureMacroModel() Model {
	if in.macroModel != nil {
		return in.macroModel
	}
	if in.model != nil && in.model.IsMacroModel() {
		in.macroModel = in.model
		return in.macroModel
	}
	if in.loader == nil || in.macroModelPath == "" {
		return nil
	}
	m, err := in.loader(in.macroModelPath)
	if err != nil {
		in.logger.Warn("could not load macro model from default path",
			"path", in.macroModelPath, "error", err)
		return nil
	}
	in.macroModel = m
	return m
}

// runMacro synthesizes script source from a natural-language instruction and
// executes it through the normal lexer and parser.
func (in *Interpreter) runMacro(ctx context.Context, instr string) error {
	return in.runGenerated(ctx, in.Synthesize(ctx, instr))
}

// Synthesize turns a natural-language instruction into script source without
// executing it. The macro statement runs this and feeds the result back
// through the pipeline; callers can also use it to preview generated source.
func (in *Interpreter) Synthesize(ctx context.Context, instr string) string {
	prompt := strings.TrimSpace(instr)
	if strings.Contains(strings.ToLower(prompt), "main starts here") {
		return `neuro "// main starts here"`
	}
	prompt = stripWrappingQuotes(prompt)

	label := "Unknown"
	var score float32
	if m := in.ensureMacroModel(); m != nil {
		l, s, err := m.PredictWithScore(ctx, prompt)
		if err != nil {
			in.logger.Warn("macro model classification failed", "error", err)
		} else {
			label, score = l, s
		}
	} else {
		in.logger.Warn("macro model is not loaded, running fallback")
	}
	in.rawLogf("INTENT", fmt.Sprintf("label=%s score=%.3f | %s", label, score, prompt))

	if score < in.threshold {
		label = inferLabelFromPrompt(prompt)
	}
	label = applyOverrides(label, prompt)

	src := buildMacroDSL(label, prompt)
	src = strings.ReplaceAll(src, "'", `"`)
	if strings.TrimSpace(src) == "" {
		src = neuroLine(prompt)
	}
	in.rawLogf("DSL", src)
	return src
}

func (in *Interpreter) runGenerated(ctx context.Context, src string) error {
	if in.macroDepth >= in.maxMacroDepth {
		return ErrMacroDepth
	}
	tokens, err := Tokenize(src)
	if err != nil {
		in.logger.Error("macro execution failed", "error", err)
		return nil
	}
	in.macroDepth++
	defer func() { in.macroDepth-- }()
	return in.Run(ctx, Parse(tokens))
}
