package main

import (
	"fmt"
	"os"
)

// version is set at build time via ldflags.
var version = ""

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
