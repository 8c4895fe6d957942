package main

import (
	"fmt"

	"github.com/aretw0/lattice/internal/cli"
	"github.com/aretw0/lattice/internal/compiler"
	"github.com/aretw0/lattice/internal/validator"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/widgets"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <file...>",
	Short: "Load YAML or JSON explorations into the bolt or redis store",
	Long: `Parses each file, validates it and stores it. Files are named after their
id, or their file name when the document has none. Nothing is written when
any file fails to parse or validate, unless --force is given.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		strict, _ := cmd.Flags().GetBool("strict")
		force, _ := cmd.Flags().GetBool("force")
		ctx := cmd.Context()

		backend, err := openBackend()
		if err != nil {
			return err
		}
		defer backend.Close()
		if backend.Writer == nil {
			return fmt.Errorf("the %s store is read-only", cfg.Store.Driver)
		}

		var popts []compiler.ParserOption
		if strict {
			popts = append(popts, compiler.Strict())
		}
		exps, err := cli.ParseFiles(args, compiler.NewParser(popts...))
		if err != nil {
			return err
		}

		registry := widgets.Default()
		for _, exp := range exps {
			if err := validator.Validate(exp, registry, domain.InteractiveScope).Err(); err != nil && !force {
				return fmt.Errorf("%s: %w", exp.ID, err)
			}
		}
		out := cmd.OutOrStdout()
		for _, exp := range exps {
			if err := backend.Writer.Put(ctx, exp); err != nil {
				return fmt.Errorf("store %s: %w", exp.ID, err)
			}
			logger.Debug("exploration imported", "exploration_id", exp.ID, "states", len(exp.States))
			fmt.Fprintf(out, "imported %s (%d states)\n", exp.ID, len(exp.States))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().Bool("strict", false, "Reject unknown fields")
	importCmd.Flags().Bool("force", false, "Store explorations even when validation fails")
}
