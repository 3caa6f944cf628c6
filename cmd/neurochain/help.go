package main

import "fmt"

// printHelp writes the language reference shown by the repl's "help" command.
func printHelp() {
	fmt.Println(`📖 NeuroChain Language Reference

Basic syntax:
  AI: "models/distilbert-sst2/model.onnx"   Load a classifier model
  neuro "Hello, world!"                     Print a value
  neuro name                                Print a variable
  set x = 5                                 Assign a variable
  set x = 2 + 3 * 4                         Arithmetic (+ - * / %)
  set greeting = "Hello, " + name           String concatenation
  set mood from AI: "I love this!"          Store a prediction result

Macros (natural language in, script out):
  macro from AI: "repeat hello 3 times"
  macro from AI: "set total to 10 * 4 and print it"
  macro from AI: "if mood is Positive print yes otherwise print no"

Control flow:
  if "I love this!" == "Positive":
      neuro "Sounds upbeat."
  elif score > 10:
      neuro "Big score."
  else:
      neuro "Nothing matched."

Operators:
  == != < > <= >=    Comparison (numeric, else case-insensitive text)
  and or             Both sides always evaluate
  + - * / % **       Arithmetic; + joins strings

Models (shorthand ids accepted by the server):
  sst2        Sentiment          Negative / Positive
  toxic       Toxicity           Toxic / Not toxic
  factcheck   Fact checking      entailment / neutral / contradiction
  intent      Command intent     RightCommand, LeftCommand, ...
  macro       Macro synthesis    Loop, Branch, Arith, ...

Logging (environment):
  NEUROCHAIN_OUTPUT_LOG=1   Append printed output to logs/run_latest.log
  NEUROCHAIN_RAW_LOG=1      Append macro traces to logs/macro_raw_latest.log

Docs: https://github.com/stellarzerolabs/neurochain`)
}
