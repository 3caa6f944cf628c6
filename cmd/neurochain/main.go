// Package main provides the NeuroChain CLI.
package main

import (
	"fmt"
	"os"
)

var (
	version = "dev"
)

const aboutText = "🌌 NeuroChain CLI – built for AI, logic and elegance. StellarZeroLabs © 2026."

func main() {
	if len(os.Args) < 2 {
		printBanner()
		replCmd(nil)
		return
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "run":
		runCmd(args)
	case "serve":
		serveCmd(args)
	case "generate":
		generateCmd(args)
	case "repl":
		printBanner()
		replCmd(args)
	case "version", "--version", "-v":
		fmt.Printf("🧬 NeuroChain version %s\n", version)
	case "about", "--about":
		fmt.Println(aboutText)
	case "help", "-h", "--help":
		printUsage()
	default:
		// Bare file argument runs it as a script.
		if _, err := os.Stat(cmd); err == nil {
			runCmd(os.Args[1:])
			return
		}
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`NeuroChain - a scriptable language for classifier-driven logic

Usage:
  neurochain <command> [options]

Commands:
  run       Run a .nc script file
  serve     Start the HTTP API server
  generate  Turn a natural-language instruction into script source
  repl      Interactive interpreter session
  version   Print version information
  help      Show language reference and usage

Examples:
  neurochain run examples/macro_test.nc
  neurochain serve --config neurochain.yaml
  neurochain generate "repeat hello 3 times"

Run 'neurochain <command> --help' for more information on a command.`)
}
