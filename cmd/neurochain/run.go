package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	neurochain "github.com/stellarzerolabs/neurochain"
	"github.com/stellarzerolabs/neurochain/dsl"
)

// loadConfigOrExit reads the config file, falling back to defaults plus the
// environment when the file is absent.
func loadConfigOrExit(path string) neurochain.Config {
	cfg, err := neurochain.LoadConfig(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// newInterpreter wires up an interpreter, opening the append-only session
// logs when the config enables them.
func newInterpreter(cfg neurochain.Config) (*dsl.Interpreter, func()) {
	var opts []dsl.Option
	var closers []io.Closer

	openLog := func(name string) io.Writer {
		if err := os.MkdirAll("logs", 0o755); err != nil {
			return nil
		}
		f, err := os.OpenFile(filepath.Join("logs", name),
			os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil
		}
		closers = append(closers, f)
		return f
	}

	if cfg.OutputLog {
		if w := openLog("run_latest.log"); w != nil {
			opts = append(opts, dsl.WithOutputLog(w))
		}
	}
	if cfg.RawLog {
		if w := openLog("macro_raw_latest.log"); w != nil {
			opts = append(opts, dsl.WithRawLog(w))
		}
	}

	cleanup := func() {
		for _, c := range closers {
			c.Close()
		}
	}
	return neurochain.NewInterpreter(cfg, opts...), cleanup
}

// runCmd executes a script file, or stdin when the file is "-".
func runCmd(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := fs.String("config", "neurochain.yaml", "Config file path")
	fs.Usage = func() {
		fmt.Println(`Usage: neurochain run <file.nc> [options]

Options:
  --config string   Config file path (default "neurochain.yaml")`)
	}
	fs.Parse(args)

	if fs.NArg() < 1 {
		fs.Usage()
		os.Exit(1)
	}
	path := fs.Arg(0)

	var source []byte
	var err error
	if path == "-" {
		source, err = io.ReadAll(os.Stdin)
	} else {
		source, err = os.ReadFile(path)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
		os.Exit(1)
	}

	cfg := loadConfigOrExit(*configPath)
	interp, cleanup := newInterpreter(cfg)
	defer cleanup()

	fmt.Printf("Running script: %s\n", path)
	out, err := neurochain.Analyze(context.Background(), string(source), interp)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(out)
}

// generateCmd prints the script source a macro instruction expands into,
// without running it.
func generateCmd(args []string) {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	configPath := fs.String("config", "neurochain.yaml", "Config file path")
	fs.Usage = func() {
		fmt.Println(`Usage: neurochain generate "<instruction>" [options]

Options:
  --config string   Config file path (default "neurochain.yaml")`)
	}
	fs.Parse(args)

	if fs.NArg() < 1 {
		fs.Usage()
		os.Exit(1)
	}
	prompt := strings.Join(fs.Args(), " ")

	cfg := loadConfigOrExit(*configPath)
	interp, cleanup := newInterpreter(cfg)
	defer cleanup()

	fmt.Println(interp.Synthesize(context.Background(), prompt))
}

// replCmd reads multi-line blocks terminated by an empty line and runs each
// one, keeping variables across blocks.
func replCmd(args []string) {
	fs := flag.NewFlagSet("repl", flag.ExitOnError)
	configPath := fs.String("config", "neurochain.yaml", "Config file path")
	fs.Parse(args)

	cfg := loadConfigOrExit(*configPath)
	interp, cleanup := newInterpreter(cfg)
	defer cleanup()

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for {
		fmt.Println("Enter NeuroChain code (finish with an empty line):")

		var block strings.Builder
		for {
			fmt.Print("... ")
			if !scanner.Scan() {
				fmt.Println()
				return
			}
			line := scanner.Text()
			if strings.TrimSpace(line) == "" {
				break
			}
			block.WriteString(line)
			block.WriteByte('\n')
		}

		input := strings.TrimSpace(block.String())
		handled, quit := replIntercept(input, os.Stdout)
		if quit {
			return
		}
		if handled {
			continue
		}

		out, err := neurochain.Analyze(context.Background(), input, interp)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}
		fmt.Println(out)
	}
}

// replIntercept handles meta commands typed at the REPL prompt. It reports
// whether the input was consumed and whether the session should end.
func replIntercept(input string, out io.Writer) (handled, quit bool) {
	switch input {
	case "exit":
		fmt.Fprintln(out, "Exiting...")
		return true, true
	case "help":
		printHelp()
		return true, false
	case "version", "--version", "-v":
		fmt.Fprintf(out, "🧬 NeuroChain version %s\n", version)
		return true, false
	case "about", "--about":
		fmt.Fprintln(out, aboutText)
		return true, false
	case "":
		return true, false
	}
	return false, false
}
