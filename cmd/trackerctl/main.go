package main

import (
	"os"

	"expensetracker/cmd/trackerctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
