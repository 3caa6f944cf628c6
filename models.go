package neurochain

import (
	"github.com/stellarzerolabs/neurochain/classifier"
	"github.com/stellarzerolabs/neurochain/dsl"
)

// ClassifierLoader adapts classifier.Load to the interpreter's loader
// signature.
func ClassifierLoader(opts ...classifier.Option) dsl.Loader {
	return func(path string) (dsl.Model, error) {
		return classifier.Load(path, opts...)
	}
}

// ResolveModelPath maps a public model ID to its artifact path under
// modelsDir. Unknown IDs return false.
func ResolveModelPath(modelsDir, id string) (string, bool) {
	var rel string
	switch id {
	case "sst2":
		rel = "distilbert-sst2/model.onnx"
	case "factcheck":
		rel = "factcheck/model.onnx"
	case "intent":
		rel = "intent/model.onnx"
	case "toxic":
		rel = "toxic_quantized/model.onnx"
	case "macro", "intent_macro", "macro_intent", "gpt2", "generator":
		rel = "intent_macro/model.onnx"
	case "policy":
		rel = "policy/model.onnx"
	default:
		return "", false
	}
	return modelsDir + "/" + rel, true
}
