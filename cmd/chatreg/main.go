package main

import (
	"os"

	"github.com/najoast/chatreg/cmd/chatreg/commands"
)

// Version information - set during build
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)

	// Errors are already printed by the commands
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
