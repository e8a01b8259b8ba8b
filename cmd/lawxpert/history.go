package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	var (
		limit   int
		jsonOut bool
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent analysis audit records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, closeRepo, err := openAuditRepo(cmd.Context(), loadConfig())
			if err != nil {
				return err
			}
			defer closeRepo()

			records, err := repo.ListRecent(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("list history: %w", err)
			}

			if jsonOut {
				data, err := json.MarshalIndent(records, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal records: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No analyses recorded.")
				return nil
			}
			for _, r := range records {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %-9s  %-4s  calls=%d  %dms  %s\n",
					r.CreatedAt.Format("2006-01-02 15:04:05"),
					r.Status,
					r.SourceKind,
					r.UpstreamCalls,
					r.DurationMs,
					r.RequestID,
				)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of records")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output records as JSON")
	return cmd
}
