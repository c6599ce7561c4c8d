package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/file-citas/zotgraph/internal/config"
)

var (
	initYear int
	initCit  int
)

func init() {
	initCmd.Flags().IntVar(&initYear, "year", 0, "Reject papers published before this year (0: no floor)")
	initCmd.Flags().IntVar(&initCit, "cit", 0, "Reject papers cited more often than this (0: no ceiling)")
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(projectsCmd)
}

var initCmd = &cobra.Command{
	Use:   "init <project>",
	Short: "Create a project",
	Long: `Create a new project directory with its filter configuration.

Examples:
  zg init hypermutation
  zg init recent-work --year 2015 --cit 5000`,
	Args: cobra.ExactArgs(1),
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	p, err := config.InitProject(cfg.ProjectsDir, args[0], config.Filter{Year: initYear, Cit: initCit})
	if err != nil {
		if errors.Is(err, config.ErrProjectExists) || errors.Is(err, config.ErrInvalidProject) {
			exitWithError(ExitConfigError, "%v", err)
		}
		return fmt.Errorf("creating project: %w", err)
	}

	if humanOutput {
		outputHuman("Created project %s in %s\n", p.Name, p.Dir)
		return nil
	}
	return outputJSON(StatusResponse{Status: "created", Path: p.Dir})
}

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List projects",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := mustLoadConfig()
		names, err := config.ListProjects(cfg.ProjectsDir)
		if err != nil {
			return fmt.Errorf("listing projects: %w", err)
		}
		if names == nil {
			names = []string{}
		}
		if !humanOutput {
			return outputJSON(names)
		}
		if len(names) == 0 {
			outputHuman("No projects in %s\n", cfg.ProjectsDir)
		}
		for _, n := range names {
			outputHuman("%s\n", n)
		}
		return nil
	},
}
