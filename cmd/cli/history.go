package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/hairizuanbinnoorazman/design-testgen/scriptgen"
	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "history",
		Aliases: []string{"generations"},
		Short:   "Browse past generations",
	}

	cmd.AddCommand(newHistoryListCmd())
	cmd.AddCommand(newHistoryGetCmd())
	cmd.AddCommand(newHistoryDownloadCmd())
	cmd.AddCommand(newHistoryDeleteCmd())
	return cmd
}

func newHistoryListCmd() *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List generations, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}
			return runHistoryList(client, limit, offset, cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of results")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of results to skip")
	return cmd
}

func runHistoryList(client *Client, limit, offset int, w io.Writer) error {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("offset", strconv.Itoa(offset))

	body, err := client.Get("/api/v1/generations", query)
	if err != nil {
		return err
	}

	if flagJSON {
		printRawJSON(w, body)
		return nil
	}

	var resp PaginatedResponse[scriptgen.GenerationRecord]
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	headers := []string{"ID", "FRAMEWORK", "STATUS", "BASE URL", "SIZE", "CREATED"}
	var rows [][]string
	for _, g := range resp.Items {
		rows = append(rows, []string{
			g.ID.String(),
			string(g.Framework),
			string(g.Status),
			g.BaseURL,
			strconv.FormatInt(g.FileSize, 10),
			g.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	printTable(w, headers, rows)
	printMessage(w, fmt.Sprintf("\nShowing %d of %d generations", len(resp.Items), resp.Total))
	return nil
}

func newHistoryGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a single generation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}
			return runHistoryGet(client, args[0], cmd.OutOrStdout())
		},
	}
}

func runHistoryGet(client *Client, id string, w io.Writer) error {
	body, err := client.Get("/api/v1/generations/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}

	if flagJSON {
		printRawJSON(w, body)
		return nil
	}

	var g scriptgen.GenerationRecord
	if err := json.Unmarshal(body, &g); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	printMessage(w, fmt.Sprintf("ID:        %s", g.ID))
	printMessage(w, fmt.Sprintf("Framework: %s", g.Framework))
	printMessage(w, fmt.Sprintf("Status:    %s", g.Status))
	if g.BaseURL != "" {
		printMessage(w, fmt.Sprintf("Base URL:  %s", g.BaseURL))
	}
	if files := g.FileList(); len(files) > 0 {
		printMessage(w, fmt.Sprintf("Files:     %s", strings.Join(files, ", ")))
	}
	if g.ErrorMessage != nil {
		printMessage(w, fmt.Sprintf("Error:     %s", *g.ErrorMessage))
	}
	if g.Warning != nil {
		printMessage(w, fmt.Sprintf("Warning:   %s", *g.Warning))
	}
	printMessage(w, fmt.Sprintf("Created:   %s", g.CreatedAt.Format("2006-01-02 15:04:05")))
	return nil
}

func newHistoryDownloadCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "download <id>",
		Short: "Download the combined script of a generation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}
			return runHistoryDownload(client, args[0], output, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Destination file (default: the server-provided filename)")
	return cmd
}

func runHistoryDownload(client *Client, id, output string, w io.Writer) error {
	data, filename, err := client.Download("/api/v1/generations/" + url.PathEscape(id) + "/download")
	if err != nil {
		return err
	}

	if output == "" {
		output = filename
	}
	if output == "" {
		output = scriptgen.CombinedFilename
	}

	if err := os.WriteFile(output, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}
	printMessage(w, fmt.Sprintf("Saved %d bytes to %s", len(data), output))
	return nil
}

func newHistoryDeleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a generation and its stored script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirmAction(cmd.InOrStdin(), cmd.OutOrStdout(), fmt.Sprintf("Delete generation %s?", args[0]), yes) {
				printMessage(cmd.OutOrStdout(), "Aborted.")
				return nil
			}

			client, err := getClient()
			if err != nil {
				return err
			}
			if _, err := client.Delete("/api/v1/generations/" + url.PathEscape(args[0])); err != nil {
				return err
			}
			printMessage(cmd.OutOrStdout(), "Generation deleted.")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation prompt")
	return cmd
}
