package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"
	ctrllog "sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"

	"github.com/anvil-platform/autoconfig/internal/failureanalysis"
)

func newRootCmd() *cobra.Command {
	var verbose bool
	opts := zap.Options{Development: true}

	root := &cobra.Command{
		Use:           "autoconfig",
		Short:         "Order and select auto-configurations",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if verbose {
				opts.Level = zapcore.DebugLevel
			}
			ctrllog.SetLogger(zap.New(zap.UseFlagOptions(&opts), zap.WriteTo(cmd.ErrOrStderr())))
		},
	}

	zapFlags := flag.NewFlagSet("zap", flag.ContinueOnError)
	opts.BindFlags(zapFlags)
	root.PersistentFlags().AddGoFlagSet(zapFlags)
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(newSortCmd(), newSelectCmd(), newServeCmd())

	// SilenceErrors is set: failures are printed once, after analysis.
	for _, c := range root.Commands() {
		wrapRunE(c)
	}
	return root
}

// wrapRunE prints the failure analysis of an error before returning it.
func wrapRunE(cmd *cobra.Command) {
	run := cmd.RunE
	if run == nil {
		return
	}
	cmd.RunE = func(c *cobra.Command, args []string) error {
		err := run(c, args)
		if err != nil {
			fmt.Fprintln(c.ErrOrStderr(), failureanalysis.Describe(err))
		}
		return err
	}
}

func logger() logr.Logger {
	return ctrllog.Log.WithName("autoconfig")
}

func commandContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return ctrllog.IntoContext(ctx, logger())
}
