package main

import (
	"fmt"

	"github.com/aretw0/lattice/internal/cli"
	"github.com/aretw0/lattice/internal/presentation/graph"
	"github.com/aretw0/lattice/pkg/adapters/file"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <exploration-id>",
	Short: "Export an exploration as a Mermaid diagram",
	Long: `Outputs a Mermaid flowchart (graph TD) of the exploration's states and rules.
With --session, the states visited by a saved terminal session are highlighted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		backend, err := openBackend()
		if err != nil {
			return err
		}
		defer backend.Close()

		exp, err := backend.Store.Get(ctx, args[0])
		if err != nil {
			return err
		}

		var overlay *graph.Overlay
		if sessionID, _ := cmd.Flags().GetString("session"); sessionID != "" {
			dir, _ := cmd.Flags().GetString("session-dir")
			sessions, err := cli.SecureSessions(cfg, file.NewSessionStore(dir))
			if err != nil {
				return err
			}
			play, err := sessions.Load(ctx, sessionID)
			if err != nil {
				return fmt.Errorf("session %s: %w", sessionID, err)
			}
			overlay = &graph.Overlay{Visited: play.History, Current: play.StateID}
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(exp, overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("session", "", "Highlight the path of a saved session")
	graphCmd.Flags().String("session-dir", file.DefaultDir(), "Directory of saved sessions")
}
