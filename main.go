package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	"github.com/hvacjoy/joyline/pkg/cli"
)

var version = "dev"

func main() {
	// Optional local overrides; production supplies real environment
	// variables.
	_ = godotenv.Load()

	if err := cli.Run(context.Background(), os.Args, version); err != nil {
		os.Exit(1)
	}
}
