package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kbukum/ingest/logger"
	"github.com/kbukum/ingest/simulate"
)

type simulateOptions struct {
	pipelines string
	id        string
	docs      string
	verbose   bool
}

func newSimulateCmd() *cobra.Command {
	var opts simulateOptions
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Dry-run a pipeline from a definitions file over sample documents",
		Example: `  ingestd simulate --pipelines pipelines.yml --id users --docs docs.json
  ingestd simulate --pipelines pipelines.yml --id users --docs docs.json --verbose`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := runSimulate(cmd.Context(), opts)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		},
	}
	cmd.Flags().StringVar(&opts.pipelines, "pipelines", "", "pipeline definitions file (YAML)")
	cmd.Flags().StringVar(&opts.id, "id", "", "pipeline id to run")
	cmd.Flags().StringVar(&opts.docs, "docs", "", "JSON file with an array of {\"_source\": {...}} documents")
	cmd.Flags().BoolVar(&opts.verbose, "verbose", false, "report the outcome of every processor")
	_ = cmd.MarkFlagRequired("pipelines")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("docs")
	return cmd
}

func runSimulate(ctx context.Context, opts simulateOptions) (*simulate.Response, error) {
	cfg := &Config{}
	cfg.ApplyDefaults()
	rt := newRuntime(cfg, logger.Nop(), nil)
	if err := rt.loadPipelines(opts.pipelines); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(opts.docs)
	if err != nil {
		return nil, fmt.Errorf("reading docs: %w", err)
	}
	var docs []map[string]any
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("parsing docs %s: %w", opts.docs, err)
	}
	return rt.simulator.Simulate(ctx, &simulate.Request{
		PipelineID: opts.id,
		Docs:       docs,
		Verbose:    opts.verbose,
	})
}
