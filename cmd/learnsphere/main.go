package main

import (
	"os"

	"github.com/learnsphere/client/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
