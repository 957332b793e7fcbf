package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-dorf/pkg/document"
	"github.com/goliatone/go-dorf/pkg/openapi"
)

func listOpenAPI(cmd *cobra.Command, path string) error {
	importer := openapi.New(openapi.WithLogger(logger))
	var (
		spec *openapi.Spec
		err  error
	)
	if openapi.IsURL(path) {
		spec, err = importer.LoadURL(cmd.Context(), path)
	} else {
		spec, err = importer.LoadFile(cmd.Context(), path)
	}
	if err != nil {
		return fmt.Errorf("failed to load openapi document: %w", err)
	}

	out := cmd.OutOrStdout()
	if name := spec.Title(); name != "" {
		fmt.Fprintf(out, "%s\n\n", name)
	}
	fmt.Fprintln(out, "Components:")
	for _, name := range spec.Components() {
		fmt.Fprintf(out, "  %s\n", name)
	}
	fmt.Fprintln(out, "Operations:")
	for _, id := range spec.OperationIDs() {
		fmt.Fprintf(out, "  %s\n", id)
	}
	return nil
}

func printSchema(cmd *cobra.Command) error {
	_, err := cmd.OutOrStdout().Write(document.Schema())
	return err
}
