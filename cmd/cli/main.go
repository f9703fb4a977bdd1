package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

type entry struct {
	RunID       string  `json:"run_id"`
	Description string  `json:"description"`
	Result      string  `json:"result"`
	Error       *string `json:"error"`
}

type runReport struct {
	RunID  string  `json:"run_id"`
	Report []entry `json:"report"`
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "sanityctl",
		Short:         "Trigger sanity runs and fetch their reports",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	def := os.Getenv("API_BASE")
	if def == "" {
		def = "http://localhost:3000"
	}
	cmd.PersistentFlags().String("api", def, "sanity service base URL")
	cmd.PersistentFlags().Duration("timeout", 2*time.Minute, "request timeout")
	cmd.PersistentFlags().Bool("json", false, "print raw JSON")

	cmd.AddCommand(newRunCmd(), newResultsCmd())
	return cmd
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Execute the probe battery once and print the report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var rep runReport
			raw, err := get(cmd, "/run-tests", &rep)
			if err != nil {
				return err
			}
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				_, err := cmd.OutOrStdout().Write(raw)
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "run %s\n", rep.RunID)
			return printEntries(cmd.OutOrStdout(), rep.Report)
		},
	}
}

func newResultsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "results <run-id>",
		Short: "Fetch the stored report of a previous run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var rows []entry
			raw, err := get(cmd, "/results/"+url.PathEscape(args[0]), &rows)
			if err != nil {
				return err
			}
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				_, err := cmd.OutOrStdout().Write(raw)
				return err
			}
			return printEntries(cmd.OutOrStdout(), rows)
		},
	}
}

func get(cmd *cobra.Command, path string, out any) ([]byte, error) {
	base, _ := cmd.Flags().GetString("api")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	client := &http.Client{Timeout: timeout}

	resp, err := client.Get(strings.TrimRight(base, "/") + path)
	if err != nil {
		return nil, fmt.Errorf("contacting API: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode/100 != 2 {
		var msg struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		_ = json.Unmarshal(raw, &msg)
		if msg.Message == "" {
			msg.Message = resp.Status
		}
		if msg.Error != "" {
			return nil, fmt.Errorf("%s: %s", msg.Message, msg.Error)
		}
		return nil, fmt.Errorf("%s", msg.Message)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return raw, nil
}

func printEntries(w io.Writer, rows []entry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RESULT\tDESCRIPTION\tERROR")
	failed := 0
	for _, e := range rows {
		msg := ""
		if e.Error != nil {
			msg = *e.Error
		}
		if e.Result == "Fail" {
			failed++
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Result, e.Description, msg)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "%d probes, %d failed\n", len(rows), failed)
	return nil
}
