package main

import (
	"os"

	"github.com/GarvitBanga/JobMatch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
