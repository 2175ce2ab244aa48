package main

import (
	"os"

	"github.com/unilater/galeaz/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
