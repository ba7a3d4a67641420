package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

type rootFlags struct {
	envFile string
	as      string
}

func NewWispCommand() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "wisp",
		Short:         "Wisp, a two-party messenger with reply suggestions and tone rewriting",
		Example:       "wisp chat --peer 7f3c",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&flags.envFile, "env", ".env", "Optional dotenv file read before the environment")
	cmd.PersistentFlags().StringVar(&flags.as, "as", "", "Participant id to act as (overrides WISP_USER_ID)")

	cmd.AddCommand(
		newChatCommand(flags),
		newContactsCommand(flags),
		newDashboardCommand(flags),
		newSupportCommand(flags),
		newInspectCommand(flags),
	)

	return cmd
}

func main() {
	if err := NewWispCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}
