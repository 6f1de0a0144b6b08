package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"immodash/internal/app"
)

var groupCmd = &cobra.Command{
	Use:   "group",
	Short: "Manage WhatsApp group display names",
}

var groupSetCmd = &cobra.Command{
	Use:   "set <jid> <name>",
	Short: "Name a WhatsApp group",
	Long: `Stores a display name for a group id and drops the cached name table.
A bare numeric id gets the @g.us suffix.

Examples:
  immoctl group set 120363041234567890@g.us "Agents Cocody"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		jid := strings.TrimSpace(args[0])
		if !strings.Contains(jid, "@") {
			jid += "@g.us"
		}
		name := strings.TrimSpace(args[1])
		if name == "" {
			return fmt.Errorf("group name is empty")
		}
		e, err := open(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()
		if err := e.repo.UpsertGroup(cmd.Context(), jid, name); err != nil {
			return err
		}
		if err := e.cache.Named("groups").Del(cmd.Context(), app.GroupNamesKey); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: cached names not cleared: %v\n", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", jid, name)
		return nil
	},
}

func init() {
	groupCmd.AddCommand(groupSetCmd)
}
