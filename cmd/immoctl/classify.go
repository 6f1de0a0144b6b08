package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"immodash/internal/app"
	"immodash/internal/classify"
)

var (
	classifyLimit int
	classifyList  bool
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Run request triage over the latest publications",
	Long: `Loads the latest publications and listings, runs the keyword triage and
prints how many messages landed in each bucket.

Examples:
  immoctl classify
  immoctl classify --limit 1000 --list`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := open(ctx)
		if err != nil {
			return err
		}
		defer e.Close()
		rules, err := classify.LoadRules(cfg.RulesFile)
		if err != nil {
			return err
		}

		src := app.Sources{}
		if src.Properties, err = e.repo.FetchProperties(ctx); err != nil {
			return err
		}
		if src.Publications, err = e.repo.FetchPublications(ctx, classifyLimit); err != nil {
			return err
		}
		if src.GroupNames, err = e.repo.FetchGroupNames(ctx); err != nil {
			return err
		}
		snap, res := app.Derive(src, classify.New(rules), time.Now())

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "agent demands:    %d\n", len(res.AgentDemands))
		fmt.Fprintf(w, "private messages: %d\n", len(res.PrivateMessages))
		fmt.Fprintf(w, "discarded:        %d\n", res.Discarded)
		fmt.Fprintf(w, "duplicates:       %d\n", res.Duplicates)
		if classifyList {
			return printJSON(snap.Requests)
		}
		return nil
	},
}

func init() {
	classifyCmd.Flags().IntVar(&classifyLimit, "limit", app.DefaultPublicationsLimit, "number of most recent publications to read")
	classifyCmd.Flags().BoolVar(&classifyList, "list", false, "also print the classified messages as JSON")
}
