package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anvil-platform/autoconfig/internal/metadata"
	"github.com/anvil-platform/autoconfig/internal/sorter"
)

func newSortCmd() *cobra.Command {
	var metadataFile string

	cmd := &cobra.Command{
		Use:   "sort --metadata FILE NAME...",
		Short: "Print auto-configuration names in import order",
		Long: `Orders the given auto-configurations by name, then by declared order, then by
their before/after declarations. With no names, every entry in the metadata
file is ordered.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := metadata.LoadFile(metadataFile)
			if err != nil {
				return err
			}
			names := args
			if len(names) == 0 {
				names = catalog.Names()
			}
			logger().V(1).Info("sorting", "candidateCount", len(names), "metadataFile", metadataFile)

			order, err := sorter.New(catalog).Sort(names)
			if err != nil {
				return err
			}
			for _, name := range order {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&metadataFile, "metadata", "m", "", "Auto-configuration metadata YAML file")
	_ = cmd.MarkFlagRequired("metadata")
	return cmd
}
