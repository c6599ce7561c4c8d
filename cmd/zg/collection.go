package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/file-citas/zotgraph/internal/graph"
	"github.com/file-citas/zotgraph/internal/zotero"
)

var importLinks bool

func init() {
	importCollectionCmd.Flags().BoolVar(&importLinks, "links", false, "Also add the references and citations of each paper")
	rootCmd.AddCommand(importCollectionCmd)
}

var importCollectionCmd = &cobra.Command{
	Use:   "import-collection <project> <collection>",
	Short: "Add the papers of a library collection",
	Long: `Add every item of the named Zotero collection that links to its
Semantic Scholar page. Requires the Zotero web API settings.

Example:
  zg import-collection proj "Reading group"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := mustOpenApp(cmd.Context(), args[0])
		defer a.Close()
		if a.bridge == nil {
			exitWithError(ExitConfigError, "no library configured")
		}

		ids, err := a.bridge.CollectionPaperIDs(cmd.Context(), args[1])
		if err != nil {
			switch {
			case errors.Is(err, zotero.ErrNoAPI):
				exitWithError(ExitConfigError, "%v", err)
			case errors.Is(err, zotero.ErrNotFound), errors.Is(err, zotero.ErrAmbiguous):
				exitWithError(ExitDataError, "%v", err)
			}
			return err
		}

		var d graph.Delta
		for _, id := range ids {
			d.Merge(a.engine.AddNode(cmd.Context(), id))
			if importLinks {
				d.Merge(a.engine.AddLinks(cmd.Context(), id, graph.LinkOptions{}))
			}
		}
		a.mustSave()
		return outputDelta(d)
	},
}
