package main

import (
	"os"

	"github.com/ChristianF88/piper/cli"
)

func main() {
	if err := cli.App.Run(os.Args); err != nil {
		cli.Logger.Printf("fatal: %v", err)
		os.Exit(1)
	}
}
