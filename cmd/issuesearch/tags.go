package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newTagsCmd(flags *globalFlags) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "Inspect tag keys and values",
	}
	cmd.PersistentFlags().BoolVar(&asJSON, "json", false, "Print JSON")

	keys := &cobra.Command{
		Use:   "keys",
		Short: "List known tag keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, be, err := openBackend(cmd, flags)
			if err != nil {
				return err
			}
			defer be.Close()

			tagKeys := be.TagKeys(cmd.Context())
			if asJSON {
				return writeJSONTo(cmd.OutOrStdout(), tagKeys)
			}
			for _, t := range tagKeys {
				fmt.Fprintln(cmd.OutOrStdout(), t.Key)
			}
			return nil
		},
	}

	values := &cobra.Command{
		Use:   "values <key> [query]",
		Short: "List values of a tag key matching query",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, be, err := openBackend(cmd, flags)
			if err != nil {
				return err
			}
			defer be.Close()

			query := ""
			if len(args) == 2 {
				query = args[1]
			}
			vals, err := be.Tags(cmd.Context(), args[0], query)
			if err != nil {
				return fmt.Errorf("tag values for %s: %w", args[0], err)
			}
			if asJSON {
				return writeJSONTo(cmd.OutOrStdout(), vals)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, v := range vals {
				fmt.Fprintf(tw, "%s\t%d\n", v.Value, v.Count)
			}
			return tw.Flush()
		},
	}

	cmd.AddCommand(keys, values)
	return cmd
}
