// Command bulksend sends a templated message to every phone number in a
// spreadsheet through a dispatch gateway.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/bulksend/internal/cli"
)

func main() {
	os.Exit(run())
}

func run() int {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return cli.GetExitCode(err)
	}
	return cli.ExitSuccess
}
