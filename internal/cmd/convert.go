package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/cli"

	"github.com/nutrient-dws/client-go/pkg/build"
	"github.com/nutrient-dws/client-go/pkg/inputs"
	"github.com/nutrient-dws/client-go/pkg/workflow"
)

// ConvertCommand converts one input document to the format implied by
// the output file extension.
type ConvertCommand struct {
	ui cli.Ui
}

func (c *ConvertCommand) Synopsis() string {
	return "Convert a document to the format implied by the output filename"
}

func (c *ConvertCommand) Help() string {
	return strings.TrimSpace(`
Usage: dws convert [options] <input> <output>

  Converts a local document or a document URL to the format implied by
  the output file extension. Supported extensions: pdf, pdfa, png, jpg,
  jpeg, webp, docx, xlsx, pptx, html, md, json.

Options:

  -config=<path>     Config file (default ~/.dws.yaml)
  -ocr=<language>    Run OCR in the given language before converting
  -watermark=<text>  Stamp a text watermark on every page
  -verbose           Enable debug logging
`)
}

func (c *ConvertCommand) Run(args []string) int {
	flags := flag.NewFlagSet("convert", flag.ContinueOnError)
	flags.SetOutput(os.Stderr)
	var (
		configPath = flags.String("config", "", "")
		ocrLang    = flags.String("ocr", "", "")
		watermark  = flags.String("watermark", "", "")
		verbose    = flags.Bool("verbose", false, "")
	)
	if err := flags.Parse(args); err != nil {
		return 1
	}
	rest := flags.Args()
	if len(rest) != 2 {
		c.ui.Error(c.Help())
		return 1
	}
	inputPath, outputPath := rest[0], rest[1]

	client, err := newClient(*configPath, *verbose)
	if err != nil {
		c.ui.Error(err.Error())
		return 1
	}

	in := inputs.FromPath(inputPath)
	if strings.HasPrefix(inputPath, "http://") || strings.HasPrefix(inputPath, "https://") {
		in = inputs.FromURL(inputPath)
	}

	stage := client.Workflow().AddFilePart(in, nil)
	if *ocrLang != "" {
		stage = stage.ApplyAction(build.OCR(*ocrLang))
	}
	if *watermark != "" {
		stage = stage.ApplyAction(build.WatermarkText(*watermark, nil))
	}

	terminal, err := outputStageFor(stage, outputPath)
	if err != nil {
		c.ui.Error(err.Error())
		return 1
	}

	result := terminal.Execute(context.Background())
	if !result.Success {
		c.ui.Error(fmt.Sprintf("conversion failed: %v", result.Err()))
		return 1
	}

	if err := writeResult(result, outputPath); err != nil {
		c.ui.Error(err.Error())
		return 1
	}
	c.ui.Output(fmt.Sprintf("wrote %s", outputPath))
	return 0
}

// outputStageFor selects the workflow output from the target extension.
func outputStageFor(stage workflow.PartsStage, outputPath string) (workflow.OutputStage, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(outputPath), "."))
	switch ext {
	case "pdf":
		return stage.OutputPDF(nil), nil
	case "pdfa":
		return stage.OutputPDFA(nil), nil
	case "png", "jpg", "jpeg", "webp":
		return stage.OutputImage(ext, &build.ImageOptions{DPI: 144}), nil
	case "docx", "xlsx", "pptx":
		return stage.OutputOffice(ext), nil
	case "html":
		return stage.OutputHTML(""), nil
	case "md":
		return stage.OutputMarkdown(), nil
	case "json":
		return stage.OutputJSON(&build.JSONContentOptions{PlainText: true}), nil
	default:
		return nil, fmt.Errorf("cannot infer output format from extension %q", ext)
	}
}

func writeResult(result *workflow.Result, outputPath string) error {
	switch {
	case result.Output != nil:
		return os.WriteFile(outputPath, result.Output.Buffer, 0o644)
	case result.Content != nil:
		return os.WriteFile(outputPath, []byte(result.Content.Content), 0o644)
	case result.JSONContent != nil:
		data, err := json.MarshalIndent(result.JSONContent.Data, "", "  ")
		if err != nil {
			return fmt.Errorf("encode extracted content: %w", err)
		}
		return os.WriteFile(outputPath, data, 0o644)
	default:
		return fmt.Errorf("workflow produced no output")
	}
}
