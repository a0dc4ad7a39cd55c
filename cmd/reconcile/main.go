package main

import (
	"fmt"
	"os"

	"github.com/cmlabs-hris/attendance-engine/internal/cli"
)

func main() {
	if err := cli.BuildCLI().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
