package main

import (
	"fmt"
	"strings"
	"wisp/domain"

	"github.com/spf13/cobra"
)

func newSupportCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "support TEXT...",
		Short:   "Send a message to the support team",
		Example: `wisp support "suggestions never show up"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(flags)
			if err != nil {
				return err
			}
			defer a.close()

			notice := a.orchestrator.Support().Submit(cmd.Context(), strings.Join(args, " "))
			fmt.Fprintln(cmd.OutOrStdout(), formatNotice(notice))
			if notice.Level == domain.NoticeAlert {
				return fmt.Errorf("support ticket not delivered")
			}
			return nil
		},
	}
}
