package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"ledgerengine/internal/auditlog"
	"ledgerengine/pkg/domain/audit"
	"ledgerengine/pkg/engine"
	"ledgerengine/pkg/primitives"
)

func newRunCommand(logger *logrus.Logger) *cobra.Command {
	var auditPath string

	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Run a session against a scenario file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sf, err := loadScenario(args[0])
			if err != nil {
				return err
			}

			evaluator, decomposer := sf.buildPorts()
			sink := auditlog.NewMemoryStore()

			deps := engine.Deps{
				Evaluator:  evaluator,
				Decomposer: decomposer,
				AuditSink:  sink,
				Clock:      primitives.SystemClock{},
				IDProvider: primitives.UUIDProvider{},
				Logger:     logger,
			}

			result, err := engine.RunSession(context.Background(), deps, sf.toEngineRequest())
			if err != nil {
				return err
			}

			fmt.Printf("session %s stopped: %s\n", result.SessionID, result.StopReason)
			if result.Winner != "" {
				fmt.Printf("winner: %s (certified=%v)\n", result.Winner, result.Certified)
			}

			if auditPath != "" {
				if err := writeAuditFile(auditPath, result); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&auditPath, "audit-out", "", "path to write the persisted audit file")
	return cmd
}

func writeAuditFile(path string, result engine.SessionResult) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	sink := auditlog.NewFileSink(f)
	if err := sink.WriteEnvelope(audit.Envelope{
		PolicyProfile:       "default",
		DeterminismStrategy: "decimal_fixed_scale_12",
	}); err != nil {
		return err
	}
	for _, e := range result.Events {
		if err := sink.Append(context.Background(), e); err != nil {
			return err
		}
	}

	finalLedger := make(map[string]string)
	if result.Set != nil {
		for _, id := range result.Set.Order {
			finalLedger[string(id)] = result.Set.Roots[id].PLedger.String()
		}
	}
	return sink.WriteTerminator(audit.Terminator{
		StopReason:  result.StopReason,
		FinalLedger: finalLedger,
	})
}
