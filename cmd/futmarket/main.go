package main

import (
	"os"

	"github.com/use-agent/futmarket/cmd/futmarket/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
