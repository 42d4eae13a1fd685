package main

import (
	"os"

	"github.com/kbukum/restkit/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
