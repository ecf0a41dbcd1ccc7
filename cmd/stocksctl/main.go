package main

import (
	"os"

	"github.com/LLkaia/family-budget/cmd/stocksctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
