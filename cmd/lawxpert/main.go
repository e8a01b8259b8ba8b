package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"lawxpert-backend/internal/audit"
	"lawxpert-backend/internal/bootstrap"
	"lawxpert-backend/internal/shared/config"
	"lawxpert-backend/internal/shared/telemetry"
)

// Swapped in tests.
var (
	loadConfig     = config.Load
	buildGenerator = bootstrap.BuildGenerator
	openAuditRepo  = func(ctx context.Context, cfg config.Config) (audit.Repo, func(), error) {
		sqlDB, repo, err := bootstrap.OpenAuditRepo(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() {
			if sqlDB != nil {
				_ = sqlDB.Close()
			}
		}, nil
	}
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "lawxpert",
		Short:         "Analyze legal documents from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg := loadConfig()
			telemetry.Init(cfg.LogLevel, cfg.LogFormat)
			telemetry.SetOutput(cmd.ErrOrStderr())
		},
	}
	root.AddCommand(newAnalyzeCmd(), newHistoryCmd())
	return root
}

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		root.PrintErrln("Error:", err)
		os.Exit(1)
	}
}
