package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/ingest/pipeline"
	"github.com/kbukum/ingest/processor/builtin"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <pipelines.yml>",
		Short: "Check that every pipeline in a definitions file builds",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := validatePipelines(args[0])
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Fprintf(cmd.OutOrStdout(), "ok  %s\n", id)
			}
			return nil
		},
	}
}

func validatePipelines(path string) ([]string, error) {
	defs, err := pipeline.LoadFile(path)
	if err != nil {
		return nil, err
	}
	pipelines, err := pipeline.NewRegistry(builtin.Factories()).BuildAll(defs)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(pipelines))
	for _, p := range pipelines {
		ids = append(ids, p.ID())
	}
	return ids, nil
}
