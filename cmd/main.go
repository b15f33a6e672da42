package main

import (
	"os"

	"github.com/vaibha-v7/SIH/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
