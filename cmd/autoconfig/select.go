package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anvil-platform/autoconfig/internal/condition"
	"github.com/anvil-platform/autoconfig/internal/metadata"
	"github.com/anvil-platform/autoconfig/internal/selector"
)

func newSelectCmd() *cobra.Command {
	var (
		metadataFile    string
		environmentFile string
		exclusions      []string
		report          bool
	)

	cmd := &cobra.Command{
		Use:   "select --metadata FILE [--environment FILE] [NAME...]",
		Short: "Print the auto-configurations imported for an environment",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := metadata.LoadFile(metadataFile)
			if err != nil {
				return err
			}
			env := condition.Environment{}
			if environmentFile != "" {
				if env, err = condition.LoadEnvironmentFile(environmentFile); err != nil {
					return err
				}
			}

			ctx := commandContext(cmd)
			result, err := selector.New(catalog).Select(ctx, selector.Request{
				Candidates: args,
				Exclusions: exclusions,
			}, env)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, name := range result.Imports {
				fmt.Fprintln(out, name)
			}
			if report {
				fmt.Fprintln(out)
				fmt.Fprint(out, result.Report.String())
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&metadataFile, "metadata", "m", "", "Auto-configuration metadata YAML file")
	cmd.Flags().StringVarP(&environmentFile, "environment", "e", "", "Environment YAML file with libraries and properties")
	cmd.Flags().StringSliceVarP(&exclusions, "exclude", "x", nil, "Auto-configurations to exclude (repeatable)")
	cmd.Flags().BoolVar(&report, "report", false, "Print the condition evaluation report")
	_ = cmd.MarkFlagRequired("metadata")
	return cmd
}
