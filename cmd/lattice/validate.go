package main

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/lattice/internal/validator"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/widgets"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [exploration-id...]",
	Short: "Check explorations for authoring defects",
	Long: `Reports dangling destinations, prompts without a default rule, unknown
widgets and unreachable states. Exits non-zero when any error is found.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		ctx := cmd.Context()

		backend, err := openBackend()
		if err != nil {
			return err
		}
		defer backend.Close()

		ids := args
		if len(ids) == 0 {
			if ids, err = backend.Store.List(ctx); err != nil {
				return err
			}
		}

		registry := widgets.Default()
		reports := make([]*validator.Report, 0, len(ids))
		failed := 0
		for _, id := range ids {
			exp, err := backend.Store.Get(ctx, id)
			if err != nil {
				return err
			}
			r := validator.Validate(exp, registry, domain.InteractiveScope)
			if r.Err() != nil {
				failed++
			}
			reports = append(reports, r)
		}

		out := cmd.OutOrStdout()
		if asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(reports); err != nil {
				return err
			}
		} else {
			for _, r := range reports {
				status := "ok"
				if r.Err() != nil {
					status = "FAILED"
				}
				fmt.Fprintf(out, "%s: %s\n", r.ExplorationID, status)
				for _, d := range r.Defects {
					fmt.Fprintf(out, "  %s\n", d)
				}
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d explorations have errors", failed, len(reports))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().Bool("json", false, "Print reports as JSON")
}
