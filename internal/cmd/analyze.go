package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/cli"

	"github.com/nutrient-dws/client-go/pkg/inputs"
	"github.com/nutrient-dws/client-go/pkg/workflow"
)

// AnalyzeCommand dry-runs a workflow over the given inputs and prints
// the server's cost estimate without producing a document.
type AnalyzeCommand struct {
	ui cli.Ui
}

func (c *AnalyzeCommand) Synopsis() string {
	return "Estimate the cost of merging the given documents, without converting"
}

func (c *AnalyzeCommand) Help() string {
	return strings.TrimSpace(`
Usage: dws analyze [options] <input> [<input>...]

  Submits the workflow to the analyze endpoint. No file bytes are
  uploaded and no document is produced; the server reports a cost
  estimate and validates the instruction structure.

Options:

  -config=<path>  Config file (default ~/.dws.yaml)
  -verbose        Enable debug logging
`)
}

func (c *AnalyzeCommand) Run(args []string) int {
	flags := flag.NewFlagSet("analyze", flag.ContinueOnError)
	flags.SetOutput(os.Stderr)
	var (
		configPath = flags.String("config", "", "")
		verbose    = flags.Bool("verbose", false, "")
	)
	if err := flags.Parse(args); err != nil {
		return 1
	}
	rest := flags.Args()
	if len(rest) == 0 {
		c.ui.Error(c.Help())
		return 1
	}

	client, err := newClient(*configPath, *verbose)
	if err != nil {
		c.ui.Error(err.Error())
		return 1
	}

	var stage workflow.PartsStage
	initial := client.Workflow()
	for i, path := range rest {
		in := inputs.FromPath(path)
		if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
			in = inputs.FromURL(path)
		}
		if i == 0 {
			stage = initial.AddFilePart(in, nil)
		} else {
			stage = stage.AddFilePart(in, nil)
		}
	}

	result := stage.OutputPDF(nil).DryRun(context.Background())
	if !result.Success {
		c.ui.Error(fmt.Sprintf("analysis failed: %v", result.Err()))
		return 1
	}

	c.ui.Output(fmt.Sprintf("cost: %g", result.Analysis.Cost))
	for feature := range result.Analysis.RequiredFeatures {
		c.ui.Output(fmt.Sprintf("requires: %s", feature))
	}
	return 0
}
