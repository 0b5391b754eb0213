package main

import (
	"os"

	"github.com/RaubJo/nixzfs/cmd/nixzfs/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
