package cmd

import (
	"github.com/spf13/cobra"

	"github.com/jackchuka/depsweep/internal/report"
)

var projectsCmd = &cobra.Command{
	Use:   "projects [path]",
	Short: "List directories that contain a package manifest",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := scanPaths(args)[0]

		paths, err := newWalker().FindAllProjects(cmd.Context(), root, cfg.MaxDepth)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if flagJSON {
			return report.JSON(out, paths)
		}
		return report.Projects(out, paths)
	},
}

func init() {
	rootCmd.AddCommand(projectsCmd)
}
