package main

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/hairizuanbinnoorazman/design-testgen/scriptgen"
	"github.com/spf13/cobra"
)

var (
	generateImage     string
	generateFramework string
	generateBaseURL   string
	generateSave      bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate test code from a design image",
	Long: `Send a design image to the model, write locators, actions and test_script
files to the output directory and print the combined response.`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&generateImage, "image", "i", "", "design image (png, jpg or jpeg)")
	generateCmd.Flags().StringVarP(&generateFramework, "framework", "f", "playwright", "framework (playwright or selenium)")
	generateCmd.Flags().StringVar(&generateBaseURL, "base-url", "", "URL of the application under test")
	generateCmd.Flags().BoolVar(&generateSave, "save", false, "also write combined_output.txt to the output directory")
	generateCmd.MarkFlagRequired("image")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log := newLogger(cfg)
	validation := cfg.validationConfig()

	framework, err := scriptgen.ParseFramework(generateFramework)
	if err != nil {
		return err
	}

	image, err := os.ReadFile(generateImage)
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}
	if err := scriptgen.ValidateImage(image, validation); err != nil {
		return err
	}

	baseURL, err := scriptgen.NormalizeBaseURL(generateBaseURL, validation)
	if err != nil {
		return err
	}

	orchestrator, output, err := newOrchestrator(ctx, cfg, log)
	if err != nil {
		return err
	}

	result, err := orchestrator.Generate(ctx, scriptgen.Request{
		Image:     image,
		Framework: framework,
		BaseURL:   baseURL,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, result.Script)
	if result.Warning != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", result.Warning)
	}

	if generateSave {
		if err := output.Upload(ctx, result.Filename, bytes.NewReader([]byte(result.Script))); err != nil {
			return fmt.Errorf("failed to save %s: %w", result.Filename, err)
		}
		result.Files = append(result.Files, result.Filename)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %v to %s\n", result.Files, output.BaseDir())
	return nil
}
