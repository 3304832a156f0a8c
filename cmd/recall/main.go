package main

import (
	"os"

	"github.com/mkaline/recall/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
