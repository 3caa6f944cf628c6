// Package classifier loads text classification models and turns raw logits
// into labels. Inference runs in a sidecar service; this package owns the
// label vocabularies and the score math.
package classifier

import (
	"math"
	"strings"
)

// Kind identifies the classification task a model was trained for. It is
// derived from the model path, so models ship in directories named after
// their task.
type Kind int

const (
	Unknown Kind = iota
	Sentiment
	Toxicity
	FactCheck
	Intent
	MacroIntent
)

func (k Kind) String() string {
	switch k {
	case Sentiment:
		return "sentiment"
	case Toxicity:
		return "toxicity"
	case FactCheck:
		return "factcheck"
	case Intent:
		return "intent"
	case MacroIntent:
		return "macro-intent"
	}
	return "unknown"
}

// KindFromPath infers the task from the model path. intent_macro is checked
// before intent since the latter substring matches both.
func KindFromPath(path string) Kind {
	switch {
	case strings.Contains(path, "intent_macro"):
		return MacroIntent
	case strings.Contains(path, "sst2"):
		return Sentiment
	case strings.Contains(path, "toxic"):
		return Toxicity
	case strings.Contains(path, "factcheck"):
		return FactCheck
	case strings.Contains(path, "intent"):
		return Intent
	}
	return Unknown
}

// Labels returns the output vocabulary in logit order.
func (k Kind) Labels() []string {
	switch k {
	case Sentiment:
		return []string{"Negative", "Positive"}
	case Toxicity:
		return []string{"Toxic", "Not toxic"}
	case FactCheck:
		return []string{"entailment", "neutral", "contradiction"}
	case Intent:
		return []string{
			"RightCommand", "LeftCommand", "UpCommand", "DownCommand",
			"GoCommand", "StopCommand", "OtherCommand",
		}
	case MacroIntent:
		return []string{
			"Loop", "Branch", "Arith", "Concat", "RoleFlag", "AIBridge",
			"DocPrint", "SetVar", "Unknown",
		}
	}
	return []string{"unknown"}
}

// argmaxWithProb returns the index of the largest logit and its softmax
// probability. Subtracting the max first keeps the exponentials from
// overflowing.
func argmaxWithProb(logits []float32) (int, float32) {
	if len(logits) == 0 {
		return 0, 0
	}
	best := 0
	for i, v := range logits {
		if v > logits[best] {
			best = i
		}
	}
	var sum float64
	maxv := float64(logits[best])
	for _, v := range logits {
		sum += math.Exp(float64(v) - maxv)
	}
	return best, float32(1 / sum)
}
