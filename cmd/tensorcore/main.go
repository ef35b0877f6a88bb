// Package main provides the tensorcore CLI.
package main

import (
	"fmt"
	"os"
)

// Injected at build time with -ldflags "-X main.version=...".
var version = "v0.1.0-dev"

func main() {
	app := newApp(os.Stdin, os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
