package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ledgerengine/internal/auditlog"
	"ledgerengine/pkg/domain/hypothesis"
	"ledgerengine/pkg/engine"
	ledgererrors "ledgerengine/pkg/errors"
)

func newReplayCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay <audit-file>",
		Short: "Replay a persisted audit file and verify its final ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return ledgererrors.Wrap(err, "opening audit file")
			}
			defer f.Close()

			_, events, term, err := auditlog.ReadFile(f)
			if err != nil {
				return err
			}

			result, err := engine.ReplaySession(events, hypothesis.WorldOpen, nil)
			if err != nil {
				return err
			}

			if !auditlog.VerifyTerminator(result.Set, term) {
				return fmt.Errorf("replayed ledger does not match recorded terminator")
			}

			fmt.Printf("replay verified: stop_reason=%s\n", term.StopReason)
			for _, id := range result.Set.Order {
				fmt.Printf("  %s: %s\n", id, result.Set.Roots[id].PLedger.String())
			}
			return nil
		},
	}
	return cmd
}
