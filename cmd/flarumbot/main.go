package main

import (
	"os"

	"github.com/fbmac/flarumbot/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
