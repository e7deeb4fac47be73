package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ledgerengine/pkg/engine"
)

func newValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <scenario.yaml>",
		Short: "Run pre-credit structural gates without spending credit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sf, err := loadScenario(args[0])
			if err != nil {
				return err
			}

			_, reason, issues, err := engine.ValidateHypothesisSet(sf.toEngineRequest())
			if err != nil {
				return err
			}
			if reason != "" {
				fmt.Printf("validation failed: %s\n", reason)
				for _, issue := range issues {
					fmt.Printf("  [%s] %s (%s, %s)\n", issue.Code, issue.Detail, issue.RootA, issue.RootB)
				}
				return nil
			}
			fmt.Println("validation passed: all pre-credit gates satisfied")
			return nil
		},
	}
	return cmd
}
