package main

import (
	"os"

	"github.com/mr1hm/go-crime-forecast/internal/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
