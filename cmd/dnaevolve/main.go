// Package main provides the dnaevolve command-line tool: a thin cobra
// front end over the internal/evolve mutation-sampling engine. It
// contains no engine logic of its own — that all lives in internal/*,
// reachable from any future front end besides this CLI.
package main

import "os"

func main() {
	os.Exit(run())
}

func run() int {
	if err := newRootCmd().Execute(); err != nil {
		return 1
	}
	return 0
}
