package main

import (
	"os"

	"github.com/arclearn/loanbench/cmd"
)

func main() {
	if err := cmd.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
