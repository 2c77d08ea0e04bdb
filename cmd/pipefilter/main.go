package main

import (
	"os"

	"github.com/tkingovr/pipefilter/cmd/pipefilter/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
