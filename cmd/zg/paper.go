package main

import (
	"github.com/spf13/cobra"

	"github.com/file-citas/zotgraph/internal/graph"
)

var (
	addExpand       bool
	linksRefsOnly   bool
	linksCitsOnly   bool
	linksInfluential bool
	rescanAll       bool
)

func init() {
	addCmd.Flags().BoolVar(&addExpand, "links", false, "Also add the references and citations of each paper")

	linksCmd.Flags().BoolVar(&linksRefsOnly, "refs", false, "Only expand references")
	linksCmd.Flags().BoolVar(&linksCitsOnly, "cits", false, "Only expand citations")
	linksCmd.Flags().BoolVar(&linksInfluential, "influential", false, "Only follow influential links")
	linksCmd.MarkFlagsMutuallyExclusive("refs", "cits")

	rescanCmd.Flags().BoolVar(&rescanAll, "all", false, "Rescan every paper in the project")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(linksCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(rescanCmd)
	rootCmd.AddCommand(refreshCmd)
}

var addCmd = &cobra.Command{
	Use:   "add <project> <paper>...",
	Short: "Add papers to a project",
	Long: `Add papers by Semantic Scholar id, DOI or title.

Examples:
  zg add proj 649def34f8be52c8b66281af98ae884c09aef38b
  zg add proj DOI:10.1093/molbev/msx335
  zg add proj "Attention is all you need" --links`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := mustOpenApp(cmd.Context(), args[0])
		defer a.Close()

		var d graph.Delta
		for _, id := range args[1:] {
			added := a.engine.AddNode(cmd.Context(), id)
			d.Merge(added)
			if addExpand {
				for _, n := range added.Nodes {
					d.Merge(a.engine.AddLinks(cmd.Context(), n.NodeData.ID, graph.LinkOptions{}))
				}
			}
		}
		a.mustSave()
		return outputDelta(d)
	},
}

var linksCmd = &cobra.Command{
	Use:   "links <project> <paper>...",
	Short: "Add the references and citations of papers",
	Long: `Expand papers already in the project by adding their references and
citations. Each direction is expanded once per invocation.

Examples:
  zg links proj 649def34f8be52c8b66281af98ae884c09aef38b
  zg links proj 649def34f8be52c8b66281af98ae884c09aef38b --refs --influential`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := mustOpenApp(cmd.Context(), args[0])
		defer a.Close()

		opts := graph.LinkOptions{
			OnlyReferences:  linksRefsOnly,
			OnlyCitations:   linksCitsOnly,
			InfluentialOnly: linksInfluential,
		}
		var d graph.Delta
		for _, id := range args[1:] {
			d.Merge(a.engine.AddLinks(cmd.Context(), id, opts))
		}
		a.mustSave()
		return outputDelta(d)
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove <project> <paper>...",
	Short: "Remove papers and keep them out of the project",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := mustOpenApp(cmd.Context(), args[0])
		defer a.Close()

		var d graph.Delta
		for _, id := range args[1:] {
			d.Merge(a.engine.RemoveNode(id))
		}
		a.mustSave()
		return outputDelta(d)
	},
}

var rescanCmd = &cobra.Command{
	Use:   "rescan <project> [paper]...",
	Short: "Re-resolve papers, bypassing the node cache",
	Long: `Reload the library export and re-resolve papers from the metadata
service. Use this after editing notes or attachments in the library.

Examples:
  zg rescan proj 649def34f8be52c8b66281af98ae884c09aef38b
  zg rescan proj --all`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !rescanAll && len(args) < 2 {
			exitWithError(ExitError, "name papers to rescan or pass --all")
		}
		a := mustOpenApp(cmd.Context(), args[0])
		defer a.Close()

		var d graph.Delta
		if rescanAll {
			d = a.engine.RescanAll(cmd.Context())
		} else {
			for _, id := range args[1:] {
				d.Merge(a.engine.Rescan(cmd.Context(), id))
			}
		}
		a.mustSave()
		return outputDelta(d)
	},
}

var refreshCmd = &cobra.Command{
	Use:   "refresh <project>",
	Short: "Re-derive citation edges between papers in the project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := mustOpenApp(cmd.Context(), args[0])
		defer a.Close()

		d := graph.Delta{Edges: a.engine.RefreshAllLinks()}
		a.mustSave()
		return outputDelta(d)
	},
}
