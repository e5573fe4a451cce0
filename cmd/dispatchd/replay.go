package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"dispatchd/internal/hub"
	"dispatchd/internal/script"
	"dispatchd/pkg/types"
)

type replayResult struct {
	Emitted   int              `json:"emitted"`
	Delivered int              `json:"delivered"`
	Failures  int              `json:"failures"`
	Rejected  int              `json:"rejected"`
	Errors    []string         `json:"errors,omitempty"`
	Sinks     []types.SinkInfo `json:"sinks"`
}

func newReplayCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "replay <file|dir>...",
		Short: "Emit scripted events through the configured channels and report what the sinks saw",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			events, err := script.Load(args...)
			if err != nil {
				return err
			}
			hc, err := a.cfg.HubConfig(a.log)
			if err != nil {
				return err
			}
			h, err := hub.NewWithConfig(hc)
			if err != nil {
				return fmt.Errorf("build hub: %w", err)
			}
			sum, replayErr := script.Replay(cmd.Context(), h, events)
			res := replayResult{
				Emitted:   sum.Emitted,
				Delivered: sum.Delivered,
				Failures:  sum.Failures,
				Rejected:  sum.Rejected,
				Sinks:     h.Sinks(),
			}
			for _, e := range multierr.Errors(replayErr) {
				res.Errors = append(res.Errors, e.Error())
			}
			if err := h.Close(); err != nil {
				a.log.Warn().Err(err).Msg("hub close")
			}
			// Close notified every registration still held
			for i := range res.Sinks {
				res.Sinks[i].PublisherDied += uint64(res.Sinks[i].Subscriptions)
				res.Sinks[i].Subscriptions = 0
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(res); err != nil {
					return err
				}
			} else {
				printReplay(cmd, res)
			}
			if res.Rejected > 0 {
				return fmt.Errorf("%d events rejected", res.Rejected)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	return cmd
}

func printReplay(cmd *cobra.Command, res replayResult) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "emitted=%d delivered=%d failures=%d rejected=%d\n", res.Emitted, res.Delivered, res.Failures, res.Rejected)
	for _, e := range res.Errors {
		fmt.Fprintln(out, "error:", e)
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SINK\tKIND\tRECEIVED\tPUBLISHER_DIED")
	for _, s := range res.Sinks {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", s.Name, s.Kind, s.Received, s.PublisherDied)
	}
	_ = tw.Flush()
}
