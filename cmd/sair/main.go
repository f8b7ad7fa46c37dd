package main

import (
	"os"

	"github.com/RohanMKells/structured-additive-IR/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(cli.GetExitCode(err))
	}
}
