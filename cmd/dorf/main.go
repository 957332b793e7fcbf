package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/goliatone/go-dorf/pkg/config"
)

var (
	configFile    string
	documentFile  string
	openapiFile   string
	componentName string
	operationID   string
	rendererName  string
	outputFile    string
	presetFile    string
	title         string
	action        string
	method        string
	outputFormat  string
	verbose       bool
)

var (
	logger = zap.NewNop()
	cfg    = config.Default()
)

var rootCmd = &cobra.Command{
	Use:           "dorf",
	Short:         "Declarative form generator",
	Long:          "dorf builds forms from declarative documents or OpenAPI schemas and renders them as HTML or interactive terminal prompts",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			built, err := newLogger(true)
			if err != nil {
				return err
			}
			logger = built
		}
		return loadConfig()
	},
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a form",
	Long:  "Render a form from a document (--document) or an OpenAPI schema (--openapi with --component or --operation).",
	RunE: func(cmd *cobra.Command, args []string) error {
		return renderForm(cmd)
	},
}

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Fill a form interactively in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		return promptForm(cmd)
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a form document and the configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return validateFiles(cmd)
	},
}

var openapiCmd = &cobra.Command{
	Use:   "openapi <file>",
	Short: "List the components and operations of an OpenAPI document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return listOpenAPI(cmd, args[0])
	},
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON Schema of form documents",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printSchema(cmd)
	},
}

func init() {
	if built, err := newLogger(false); err == nil {
		logger = built
	}

	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(promptCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(openapiCmd)
	rootCmd.AddCommand(schemaCmd)

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Configuration file (yaml, json or toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	for _, cmd := range []*cobra.Command{renderCmd, promptCmd} {
		cmd.Flags().StringVarP(&documentFile, "document", "d", "", "Form document path")
		cmd.Flags().StringVar(&openapiFile, "openapi", "", "OpenAPI document path or http(s) URL")
		cmd.Flags().StringVar(&componentName, "component", "", "OpenAPI component schema to render")
		cmd.Flags().StringVar(&operationID, "operation", "", "OpenAPI operation whose request body to render")
		cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (stdout if empty)")
		cmd.Flags().StringVar(&presetFile, "preset", "", "Preset file with values and order overrides")
		cmd.Flags().StringVar(&title, "title", "", "Form title (defaults to the source title)")
	}

	renderCmd.Flags().StringVarP(&rendererName, "renderer", "r", "", "Renderer name (defaults to the configured renderer)")
	renderCmd.Flags().StringVar(&action, "action", "", "Form action URL")
	renderCmd.Flags().StringVar(&method, "method", "", "Form method (default POST)")

	promptCmd.Flags().StringVarP(&outputFormat, "format", "f", "json", "Output format (json/form/pretty)")

	validateCmd.Flags().StringVarP(&documentFile, "document", "d", "", "Form document path")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.Error("command failed", zap.Error(err))
		_ = logger.Sync()
		stop()
		os.Exit(1)
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	zcfg := zap.NewDevelopmentConfig()
	zcfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if debug {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	zcfg.OutputPaths = []string{"stderr"}
	built, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return built, nil
}

func loadConfig() error {
	cfg = config.Default()
	if configFile == "" {
		return nil
	}
	loaded, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg = loaded
	cfg.Apply()
	logger.Debug("loaded config", zap.String("path", configFile))
	return nil
}
