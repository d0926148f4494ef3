package main

import (
	"os"

	"github.com/rustyeddy/tradesizer/cmd/tradesizer/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
