package main

import (
	"fmt"
	"io"
	"strconv"
	"time"
	"wisp/domain"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func newContactsCommand(flags *rootFlags) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "contacts",
		Short: "List the other participants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(flags)
			if err != nil {
				return err
			}
			defer a.close()

			ctx, stop := signalContext(cmd.Context())
			defer stop()
			directory := a.orchestrator.Directory()
			out := cmd.OutOrStdout()

			if !watch {
				contacts, err := directory.Contacts(ctx)
				if err != nil {
					return err
				}
				renderContacts(out, contacts, time.Now())
				return nil
			}

			updates, closeFeed, err := directory.WatchContacts(ctx)
			if err != nil {
				return err
			}
			defer closeFeed()
			for contacts := range updates {
				renderContacts(out, contacts, time.Now())
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Keep the list live until interrupted")
	return cmd
}

func newDashboardCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Count users and messages of the application",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(flags)
			if err != nil {
				return err
			}
			defer a.close()

			stats, err := a.orchestrator.Directory().Stats(cmd.Context())
			if err != nil {
				return err
			}
			renderStats(cmd.OutOrStdout(), stats)
			return nil
		},
	}
}

func newTable(out io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(out)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}

func renderContacts(out io.Writer, contacts []domain.Participant, now time.Time) {
	if len(contacts) == 0 {
		fmt.Fprintln(out, "No other users yet.")
		return
	}
	table := newTable(out, []string{"Participant", "Last seen"})
	for _, c := range contacts {
		table.Append([]string{string(c.ID), lastSeen(c.LastSeen, now)})
	}
	table.Render()
}

func lastSeen(at, now time.Time) string {
	if at.IsZero() {
		return "never"
	}
	ago := now.Sub(at).Round(time.Second)
	if ago < time.Minute {
		return "just now"
	}
	return ago.String() + " ago"
}

func renderStats(out io.Writer, stats domain.DirectoryStats) {
	table := newTable(out, []string{"Metric", "Value"})
	table.Append([]string{"Users", strconv.Itoa(stats.TotalUsers)})
	table.Append([]string{"Messages", strconv.Itoa(stats.TotalMessages)})
	table.Append([]string{"Active channels", strconv.Itoa(stats.Channels)})
	table.Render()
}
