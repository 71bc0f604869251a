package main

import (
	"os"
)

const (
	Version = "v0.01.00"
	License = "Apache-2.0"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
