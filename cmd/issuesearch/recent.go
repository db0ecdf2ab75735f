package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"issuesearch/internal/backend"
	"issuesearch/internal/config"
	"issuesearch/internal/domain"
	"issuesearch/internal/obs"
)

// openBackend loads the config and opens its backend with logs on stderr
func openBackend(cmd *cobra.Command, flags *globalFlags) (*config.Config, *backend.Backend, error) {
	cfg, _, err := loadConfig(flags, nil)
	if err != nil {
		return nil, nil, err
	}
	obs.Init(cfg.LogLevel, cmd.ErrOrStderr())
	be, err := backend.Open(cmd.Context(), cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, be, nil
}

func parseTypeFlag(raw string) (domain.SearchType, error) {
	switch raw {
	case "", "issue":
		return domain.SearchTypeIssue, nil
	case "event":
		return domain.SearchTypeEvent, nil
	default:
		return 0, fmt.Errorf("unknown search type %q (want issue or event)", raw)
	}
}

func writeJSONTo(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newRecentCmd(flags *globalFlags) *cobra.Command {
	var typeName string
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List, save or clear recent searches",
	}
	cmd.PersistentFlags().StringVar(&typeName, "type", "issue", "Search type: issue or event")

	var limit int
	var asJSON bool
	list := &cobra.Command{
		Use:   "list [query]",
		Short: "List recent searches, newest first",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			searchType, err := parseTypeFlag(typeName)
			if err != nil {
				return err
			}
			cfg, be, err := openBackend(cmd, flags)
			if err != nil {
				return err
			}
			defer be.Close()

			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			if limit <= 0 {
				limit = cfg.RecentLimit
			}
			searches, err := be.Store.Recent(cmd.Context(), cfg.Organization, searchType, query, limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				if searches == nil {
					searches = []domain.RecentSearch{}
				}
				return writeJSONTo(out, searches)
			}
			for _, s := range searches {
				fmt.Fprintf(out, "%s\t%s\n", s.LastSeen.Local().Format("2006-01-02 15:04"), s.Query)
			}
			return nil
		},
	}
	list.Flags().IntVar(&limit, "limit", 0, "Maximum entries (default: recent_limit)")
	list.Flags().BoolVar(&asJSON, "json", false, "Print JSON")

	save := &cobra.Command{
		Use:   "save <query>",
		Short: "Record a query as recently searched",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			searchType, err := parseTypeFlag(typeName)
			if err != nil {
				return err
			}
			cfg, be, err := openBackend(cmd, flags)
			if err != nil {
				return err
			}
			defer be.Close()
			return be.Store.Save(cmd.Context(), cfg.Organization, searchType, args[0])
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Forget all recent searches of the organization",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			searchType, err := parseTypeFlag(typeName)
			if err != nil {
				return err
			}
			cfg, be, err := openBackend(cmd, flags)
			if err != nil {
				return err
			}
			defer be.Close()
			if err := be.Store.Clear(cmd.Context(), cfg.Organization, searchType); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "cleared recent %s searches for %s\n", searchType, cfg.Organization)
			return nil
		},
	}

	cmd.AddCommand(list, save, clearCmd)
	return cmd
}
