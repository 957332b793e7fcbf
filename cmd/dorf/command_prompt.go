package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-dorf/pkg/orchestrator"
	"github.com/goliatone/go-dorf/pkg/render"
	"github.com/goliatone/go-dorf/pkg/renderers/tui"
)

// promptDriver is replaced in tests.
var promptDriver tui.PromptDriver

func promptForm(cmd *cobra.Command) error {
	req, err := buildRequest()
	if err != nil {
		return err
	}
	req.Renderer = tui.Name
	req.RenderOptions = render.RenderOptions{Title: title}

	driver := promptDriver
	if driver == nil {
		driver = tui.NewSurveyDriver(cmd.ErrOrStderr())
	}
	renderer, err := tui.New(
		tui.WithPromptDriver(driver),
		tui.WithOutputFormat(tui.OutputFormat(outputFormat)),
		tui.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	registry, err := render.NewRegistry(renderer)
	if err != nil {
		return err
	}

	opts, err := orchestratorOptions(orchestrator.WithRegistry(registry))
	if err != nil {
		return err
	}
	output, err := orchestrator.New(opts...).Generate(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("failed to complete form: %w", err)
	}
	return writeOutput(cmd, output)
}
