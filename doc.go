// Package neurochain runs NeuroChain scripts: a small line-oriented language
// with indentation-based blocks, string variables, classifier-backed
// conditionals, and macro statements that turn natural-language instructions
// into script source.
//
// The pipeline is Preprocess -> NormalizeLegacy -> dsl.Tokenize -> dsl.Parse
// -> dsl.Interpreter. Analyze wraps the whole pipeline for hosts.
//
// # Quick Start
//
// Run a script and collect its output:
//
//	cfg, err := neurochain.LoadConfig("neurochain.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	interp := neurochain.NewInterpreter(cfg)
//	out, err := neurochain.Analyze(ctx, `
//	set x = 2 + 3
//	neuro x
//	`, interp)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(out) // "5"
//
// # Language
//
// A script is a sequence of statements, one per line:
//
//	AI: "models/distilbert-sst2/model.onnx"
//	set verdict from AI: "this movie was wonderful"
//	if "the service was terrible" == "Negative":
//	    neuro "flagged"
//	macro from AI: repeat hello 3 times
//
// Conditions with a quoted left operand route through the loaded classifier;
// everything else compares variables and literals directly. Macro statements
// classify the instruction's intent and expand it into script source, which
// runs through the same lexer and parser.
//
// # Hosting
//
// The serve package exposes analyze and generate endpoints over HTTP with
// API-key auth and admission control; cmd/neurochain wraps the pipeline for
// the command line.
package neurochain
