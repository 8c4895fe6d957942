package main

import (
	"github.com/aretw0/lattice/internal/cli"
	"github.com/aretw0/lattice/pkg/adapters/file"
	"github.com/aretw0/lattice/pkg/content"
	"github.com/spf13/cobra"
)

var playCmd = &cobra.Command{
	Use:   "play [exploration-id]",
	Short: "Play an exploration in the terminal",
	Long: `Plays an exploration interactively. Without an id, the only exploration in
the store (or one named start, main, index or after the directory) is used.

Type q to leave and /feedback <text> to comment on the current state. With
--session, progress is saved and resumed on the next run.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, _ := cmd.Flags().GetString("session")
		fresh, _ := cmd.Flags().GetBool("fresh")
		quiet, _ := cmd.Flags().GetBool("quiet")
		watch, _ := cmd.Flags().GetBool("watch")
		sessionDir, _ := cmd.Flags().GetString("session-dir")

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		backend, err := openBackend()
		if err != nil {
			return err
		}
		defer backend.Close()

		opts := cli.PlayOptions{SessionID: sessionID, Fresh: fresh, Quiet: quiet}
		if len(args) > 0 {
			opts.ExplorationID = args[0]
		} else if opts.ExplorationID, err = cli.DefaultExploration(sigCtx, backend.Store, cfg.Store.Dir); err != nil {
			return err
		}
		if watch {
			if backend.Watcher == nil {
				logger.Warn("--watch needs the loam driver, ignoring")
			} else if opts.Reload, err = backend.Watcher.Watch(sigCtx); err != nil {
				return err
			}
		}

		sessions, err := cli.SecureSessions(cfg, file.NewSessionStore(sessionDir))
		if err != nil {
			return err
		}
		engine := cli.NewEngine(backend.Store, content.FormatMarkdown, logger, nil)
		player := cli.NewPlayer(engine, sessions,
			cli.WithIO(cmd.InOrStdin(), cmd.OutOrStdout()),
			cli.WithLogger(logger),
		)
		return cli.HandleExecutionError(player.Play(sigCtx, opts))
	},
}

func init() {
	rootCmd.AddCommand(playCmd)
	playCmd.Flags().String("session", "", "Save progress under this session id")
	playCmd.Flags().Bool("fresh", false, "Discard saved progress before playing")
	playCmd.Flags().Bool("quiet", false, "Hide the banner and system messages")
	playCmd.Flags().Bool("watch", false, "Reload explorations when files change")
	playCmd.Flags().String("session-dir", file.DefaultDir(), "Directory of saved sessions")
}
