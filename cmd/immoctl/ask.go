package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"immodash/internal/app"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print the dashboard statistics as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := open(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()
		snaps, err := e.snapshots()
		if err != nil {
			return err
		}
		st, err := app.NewDashboardService(snaps).Stats(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(st)
	},
}

var askIntent bool

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask the dashboard assistant a question",
	Long: `Routes a free-text question through the assistant against a fresh snapshot.

Examples:
  immoctl ask "prix moyen des villas"
  immoctl ask --intent "visites aujourd'hui"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := open(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()
		snaps, err := e.snapshots()
		if err != nil {
			return err
		}
		out := app.NewChatService(snaps, nil).Ask(cmd.Context(), strings.Join(args, " "))
		if askIntent {
			fmt.Fprintf(cmd.OutOrStdout(), "[%s]\n", out.Intent)
		}
		fmt.Fprintln(cmd.OutOrStdout(), out.Reply)
		return nil
	},
}

func init() {
	askCmd.Flags().BoolVar(&askIntent, "intent", false, "print the detected intent before the reply")
}
