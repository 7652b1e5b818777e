package main

import (
	"os"

	"github.com/rustyeddy/holdings/cmd/holdings/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
