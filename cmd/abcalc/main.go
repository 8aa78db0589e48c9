package main

import (
	"os"

	"github.com/eyupmaiden/sample-size-and-significance-calculators/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
