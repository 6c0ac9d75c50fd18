// Package cmd implements the dws command line tool, a thin front end
// over the client library for one-shot conversions and estimates.
package cmd

import (
	"fmt"
	"os"

	"github.com/mitchellh/cli"
)

// Version is the CLI version reported by -version.
const Version = "0.9.0"

// Run executes the CLI and returns the process exit code.
func Run(args []string) int {
	ui := &cli.BasicUi{
		Writer:      os.Stdout,
		ErrorWriter: os.Stderr,
	}

	runner := cli.NewCLI("dws", Version)
	runner.Args = args
	runner.Commands = map[string]cli.CommandFactory{
		"convert": func() (cli.Command, error) {
			return &ConvertCommand{ui: ui}, nil
		},
		"analyze": func() (cli.Command, error) {
			return &AnalyzeCommand{ui: ui}, nil
		},
	}

	code, err := runner.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	return code
}
