package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"lawxpert-backend/internal/analysis"
	"lawxpert-backend/internal/extract"
)

type analyzeOptions struct {
	file     string
	text     string
	question string
}

func newAnalyzeCmd() *cobra.Command {
	opts := &analyzeOptions{}
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Summarize a document and extract its key clauses",
		Long: `Runs the same extraction and model sequence as POST /analyze and prints
the JSON result. --file takes precedence over --text.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "path to a .pdf or .docx document")
	cmd.Flags().StringVarP(&opts.text, "text", "t", "", "document text")
	cmd.Flags().StringVarP(&opts.question, "question", "q", "", "optional question about the document")
	return cmd
}

func runAnalyze(cmd *cobra.Command, opts *analyzeOptions) error {
	ctx := cmd.Context()
	text, err := readDocument(cmd, opts)
	if err != nil {
		return err
	}

	cfg := loadConfig()
	gen, err := buildGenerator(ctx, cfg)
	if err != nil {
		return err
	}
	svc := analysis.NewService(gen, time.Duration(cfg.LLMTimeoutSeconds)*time.Second)

	result, err := svc.Analyze(ctx, analysis.Input{Text: text, Question: opts.question})
	if err != nil {
		return fmt.Errorf("analyze document: %w", err)
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func readDocument(cmd *cobra.Command, opts *analyzeOptions) (string, error) {
	if strings.TrimSpace(opts.file) == "" {
		if strings.TrimSpace(opts.text) == "" {
			return "", errors.New(analysis.ErrMissingInput.Detail)
		}
		return opts.text, nil
	}

	format, ok := extract.FormatForFileName(filepath.Base(opts.file))
	if !ok {
		return "", errors.New(analysis.ErrUnsupportedFormat.Detail)
	}
	data, err := os.ReadFile(opts.file)
	if err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}
	text, err := extract.Extract(cmd.Context(), format, data)
	if err != nil {
		return "", fmt.Errorf("extract %s text: %w", format.Label(), err)
	}
	return text, nil
}
