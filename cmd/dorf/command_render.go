package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-dorf/pkg/orchestrator"
	"github.com/goliatone/go-dorf/pkg/render"
)

func renderForm(cmd *cobra.Command) error {
	req, err := buildRequest()
	if err != nil {
		return err
	}
	req.Renderer = rendererName
	req.RenderOptions = render.RenderOptions{Title: title, Action: action, Method: method}

	opts, err := orchestratorOptions()
	if err != nil {
		return err
	}
	output, err := orchestrator.New(opts...).Generate(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("failed to render form: %w", err)
	}
	return writeOutput(cmd, output)
}

// buildRequest maps the source flags onto a request.
func buildRequest() (orchestrator.Request, error) {
	switch {
	case documentFile != "" && openapiFile != "":
		return orchestrator.Request{}, fmt.Errorf("--document and --openapi are mutually exclusive")
	case documentFile != "":
		return orchestrator.Request{DocumentPath: documentFile}, nil
	case openapiFile != "":
		if componentName == "" && operationID == "" {
			return orchestrator.Request{}, fmt.Errorf("--openapi requires --component or --operation")
		}
		return orchestrator.Request{SpecPath: openapiFile, Component: componentName, OperationID: operationID}, nil
	}
	return orchestrator.Request{}, fmt.Errorf("a source is required: --document or --openapi")
}

func orchestratorOptions(extra ...orchestrator.Option) ([]orchestrator.Option, error) {
	opts := []orchestrator.Option{
		orchestrator.WithConfig(cfg),
		orchestrator.WithLogger(logger),
	}
	if presetFile != "" {
		data, err := os.ReadFile(presetFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read preset: %w", err)
		}
		preset, err := orchestrator.NewPresetTransformer(data)
		if err != nil {
			return nil, err
		}
		opts = append(opts, orchestrator.WithTransformer(preset))
	}
	return append(opts, extra...), nil
}

func writeOutput(cmd *cobra.Command, output []byte) error {
	if outputFile == "" {
		_, err := cmd.OutOrStdout().Write(append(output, '\n'))
		return err
	}
	if err := os.WriteFile(outputFile, output, 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "✓ Form written to %s\n", outputFile)
	return nil
}
