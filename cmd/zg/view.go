package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/file-citas/zotgraph/internal/coloring"
	"github.com/file-citas/zotgraph/internal/graph"
	"github.com/file-citas/zotgraph/internal/viz"
)

var (
	viewColor  string
	infoTitle  string
	htmlOutput string
	htmlLayout string
)

func colorKeys() string {
	names := make([]string, len(coloring.Keys))
	for i, k := range coloring.Keys {
		names[i] = strings.ToLower(string(k))
	}
	return strings.Join(names, ", ")
}

func init() {
	for _, c := range []*cobra.Command{graphCmd, htmlCmd} {
		c.Flags().StringVar(&viewColor, "color", "collection", "Color nodes by: "+colorKeys())
	}
	infoCmd.Flags().StringVar(&infoTitle, "title", "", "Select the paper whose title closely matches")
	htmlCmd.Flags().StringVarP(&htmlOutput, "output", "o", "", "Output file path (default: stdout)")
	htmlCmd.Flags().StringVar(&htmlLayout, "layout", "force", "Layout: "+strings.Join(viz.ValidLayouts, " or "))

	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(htmlCmd)
}

// mustSetColoring applies the --color flag, exits on an unknown key.
func mustSetColoring(e *graph.Engine) {
	if !e.SetColoring(viewColor) {
		exitWithError(ExitError, "unknown coloring %q: must be one of %s", viewColor, colorKeys())
	}
}

var graphCmd = &cobra.Command{
	Use:   "graph <project>",
	Short: "Print the nodes and edges of a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := mustOpenApp(cmd.Context(), args[0])
		defer a.Close()
		mustSetColoring(a.engine)

		nodes, edges := a.engine.Graph()
		return outputGraph(GraphResponse{
			Project:  a.project.Name,
			Coloring: string(a.engine.Coloring()),
			Nodes:    nodes,
			Edges:    edges,
		})
	},
}

var infoCmd = &cobra.Command{
	Use:   "info <project> [paper]",
	Short: "Render the info panels of papers",
	Long: `Render the info panel HTML of every paper in the project, or of one
paper chosen by id or by --title.

Examples:
  zg info proj
  zg info proj 649def34f8be52c8b66281af98ae884c09aef38b
  zg info proj --title "attention is all"`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := mustOpenApp(cmd.Context(), args[0])
		defer a.Close()

		want := ""
		if len(args) == 2 {
			want = args[1]
		}
		if infoTitle != "" {
			id, ok := a.engine.PaperIDByTitle(infoTitle)
			if !ok {
				exitWithError(ExitDataError, "no paper matching title %q", infoTitle)
			}
			want = id
		}

		panels := a.engine.PaperInfo(cmd.Context())
		if want != "" {
			panels = selectInfo(panels, want)
			if len(panels) == 0 {
				exitWithError(ExitDataError, "paper %s not in project", want)
			}
		}

		if !humanOutput {
			return outputJSON(panels)
		}
		for _, p := range panels {
			outputHuman("<!-- %s -->\n%s\n\n", p.ID, p.HTML)
		}
		return nil
	},
}

func selectInfo(panels []graph.Info, id string) []graph.Info {
	for _, p := range panels {
		if p.ID == id {
			return []graph.Info{p}
		}
	}
	return nil
}

var htmlCmd = &cobra.Command{
	Use:   "html <project>",
	Short: "Export a project as an interactive HTML page",
	Long: `Render the project graph and info panels to a standalone HTML page.

Examples:
  zg html proj > proj.html
  zg html proj --color year --layout hierarchical -o proj.html`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := mustOpenApp(cmd.Context(), args[0])
		defer a.Close()
		mustSetColoring(a.engine)

		nodes, edges := a.engine.Graph()
		data := viz.Build(a.project.Name, nodes, edges, a.engine.PaperInfo(cmd.Context()))
		html, err := viz.GenerateHTML(data, viz.HTMLOptions{Layout: htmlLayout})
		if err != nil {
			return fmt.Errorf("generating HTML: %w", err)
		}

		if htmlOutput == "" {
			fmt.Print(html)
			return nil
		}
		if err := os.WriteFile(htmlOutput, []byte(html), 0644); err != nil {
			return fmt.Errorf("writing output file: %w", err)
		}
		if humanOutput {
			outputHuman("Graph written to %s\n", htmlOutput)
			return nil
		}
		return outputJSON(StatusResponse{Status: "written", Path: htmlOutput})
	},
}
