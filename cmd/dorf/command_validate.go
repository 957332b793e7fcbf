package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-dorf/pkg/document"
)

func validateFiles(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	if configFile == "" && documentFile == "" {
		return fmt.Errorf("nothing to validate: pass --config or --document")
	}

	if configFile != "" {
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("config validation failed: %w", err)
		}
		fmt.Fprintf(out, "✓ Config %s is valid\n", configFile)
	}

	if documentFile != "" {
		doc, err := document.Load(documentFile)
		if err != nil {
			return fmt.Errorf("document validation failed: %w", err)
		}
		obj, err := doc.Object()
		if err != nil {
			return fmt.Errorf("document validation failed: %w", err)
		}
		fmt.Fprintf(out, "✓ Document %s is valid (%d fields)\n", documentFile, len(obj.Properties()))
	}
	return nil
}
