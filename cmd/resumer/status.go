package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/cschleiden/go-resume/decision"
	"github.com/cschleiden/go-resume/lifecycle"
	"github.com/cschleiden/go-resume/store"
	"github.com/spf13/cobra"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	idleStyle   = lipgloss.NewStyle().Faint(true)
)

func newStatusCommand(flags *globalFlags) *cobra.Command {
	var (
		count   int
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "List the attributes last reported for each resource",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := newApp(ctx, flags)
			if err != nil {
				return err
			}
			defer a.Close(context.Background())

			records, err := a.store.List(ctx, count)
			if err != nil {
				return fmt.Errorf("listing records: %w", err)
			}

			if jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(records)
			}

			printRecords(cmd.OutOrStdout(), records)
			return nil
		},
	}

	cmd.Flags().IntVar(&count, "count", 25, "Maximum number of resources to list")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print records as JSON")

	return cmd
}

func printRecords(w io.Writer, records []*store.Record) {
	if len(records) == 0 {
		fmt.Fprintln(w, idleStyle.Render("no resources"))
		return
	}

	idWidth := len("RESOURCE")
	for _, r := range records {
		idWidth = max(idWidth, len(r.PhysicalID))
	}

	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-*s  %-24s  %-20s  %s", idWidth, "RESOURCE", "STATUS", "UPDATED", "LAST EXECUTION")))

	for _, r := range records {
		status := r.Attributes[lifecycle.AttrCurrentStatus]

		fmt.Fprintf(w, "%-*s  %s  %-20s  %s\n",
			idWidth, r.PhysicalID,
			statusStyle(status).Render(fmt.Sprintf("%-24s", status)),
			r.UpdatedAt.UTC().Format(time.RFC3339),
			r.Attributes[lifecycle.AttrLastExecutionArn],
		)
	}
}

func statusStyle(status string) lipgloss.Style {
	switch {
	case status == "":
		return idleStyle
	case decision.Status(status).IsError(), strings.Contains(status, "FAILED"),
		status == "TIMED_OUT", status == "ABORTED":
		return failedStyle
	default:
		return okStyle
	}
}
