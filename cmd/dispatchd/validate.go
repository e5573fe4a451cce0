package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load and validate the configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.Validate(); err != nil {
				for _, e := range multierr.Errors(err) {
					fmt.Fprintln(cmd.ErrOrStderr(), "  -", e)
				}
				return fmt.Errorf("invalid configuration (%d problems)", len(multierr.Errors(err)))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d sinks, %d channels\n", len(a.cfg.Sinks), len(a.cfg.Channels))
			return nil
		},
	}
}
