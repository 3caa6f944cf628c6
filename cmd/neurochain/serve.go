package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/stellarzerolabs/neurochain/serve"
)

// serveCmd starts the HTTP API server and blocks until interrupted.
func serveCmd(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "neurochain.yaml", "Config file path")
	addr := fs.String("addr", "", "Listen address (overrides config host/port)")
	fs.Usage = func() {
		fmt.Println(`Usage: neurochain serve [options]

Options:
  --config string   Config file path (default "neurochain.yaml")
  --addr string     Listen address, e.g. 0.0.0.0:8081 (overrides config)`)
	}
	fs.Parse(args)

	cfg := loadConfigOrExit(*configPath)
	if *addr != "" {
		host, port, ok := strings.Cut(*addr, ":")
		if !ok {
			fmt.Fprintf(os.Stderr, "Invalid --addr %q: expected host:port\n", *addr)
			os.Exit(1)
		}
		p, err := strconv.Atoi(port)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid --addr port %q: %v\n", port, err)
			os.Exit(1)
		}
		if host != "" {
			cfg.Host = host
		}
		cfg.Port = p
	}

	printServerBanner()
	fmt.Printf("Listening on http://%s\n", cfg.Addr())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := serve.New(cfg).Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
