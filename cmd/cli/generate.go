package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hairizuanbinnoorazman/design-testgen/scriptgen"
	"github.com/spf13/cobra"
)

type generateOptions struct {
	imagePath string
	framework string
	baseURL   string
	output    string
}

func newGenerateCmd() *cobra.Command {
	var opts generateOptions

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate test code from a design image",
		Example: `  testgenctl generate --image login.png
  testgenctl generate -i login.png -f selenium --base-url https://staging.example.com -o combined_output.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("framework") {
				opts.framework = cfg.GetString("framework")
			}
			if !cmd.Flags().Changed("base-url") {
				opts.baseURL = cfg.GetString("base_url")
			}
			return runGenerate(client, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.imagePath, "image", "i", "", "Path to the design image (PNG or JPEG)")
	cmd.Flags().StringVarP(&opts.framework, "framework", "f", "", "Test framework: playwright or selenium")
	cmd.Flags().StringVar(&opts.baseURL, "base-url", "", "Base URL injected into the generated test script")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Also write the combined script to this file")
	_ = cmd.MarkFlagRequired("image")

	return cmd
}

func runGenerate(client *Client, opts generateOptions, w io.Writer) error {
	framework := scriptgen.FrameworkPlaywright
	if opts.framework != "" {
		parsed, err := scriptgen.ParseFramework(opts.framework)
		if err != nil {
			return err
		}
		framework = parsed
	}

	image, err := os.ReadFile(opts.imagePath)
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}

	fields := map[string]string{
		"framework": string(framework),
		"base_url":  opts.baseURL,
	}
	body, err := client.Upload("/api/v1/generate", fields, "image", filepath.Base(opts.imagePath), image)
	if err != nil {
		return err
	}

	if flagJSON {
		printRawJSON(w, body)
		return nil
	}

	var resp GenerateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if opts.output != "" {
		if err := os.WriteFile(opts.output, []byte(resp.Script), 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}

	printMessage(w, resp.Script)
	printMessage(w, "")
	printTable(w, []string{"ID", "FRAMEWORK", "FILES"}, [][]string{
		{resp.ID.String(), string(resp.Framework), fmt.Sprintf("%d", len(resp.Files))},
	})
	if resp.Warning != "" {
		printMessage(w, "Warning: "+resp.Warning)
	}
	if opts.output != "" {
		printMessage(w, "Script written to "+opts.output)
	}
	return nil
}
