package main

import (
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/file-citas/zotgraph/internal/zotero"
)

var watchDebounce time.Duration

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", zotero.DefaultDebounce, "Quiet period after the last write before rescanning")
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch <project>",
	Short: "Rescan a project whenever the library export changes",
	Long: `Watch the library CSV export and rescan every paper of the project after
each change, saving the project. Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a := mustOpenApp(ctx, args[0])
		defer a.Close()
		if a.bridge == nil {
			exitWithError(ExitConfigError, "no library configured")
		}

		err := zotero.WatchLibrary(ctx, a.bridge, watchDebounce, func(err error) {
			if err != nil {
				return
			}
			// WatchLibrary has already reloaded the export.
			d := a.engine.RescanLoaded(ctx)
			if err := a.Save(); err != nil {
				slog.Error("saving project", "error", err)
				return
			}
			slog.Info("project rescanned", "project", a.project.Name, "nodes", len(d.Nodes))
		})
		if err != nil {
			return err
		}
		slog.Info("watching library", "path", a.bridge.Library().Path())
		<-ctx.Done()
		return nil
	},
}
