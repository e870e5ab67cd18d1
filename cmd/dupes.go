package cmd

import (
	"github.com/spf13/cobra"

	"github.com/jackchuka/depsweep/internal/duplicates"
	"github.com/jackchuka/depsweep/internal/report"
)

var dupesCmd = &cobra.Command{
	Use:   "dupes [paths...]",
	Short: "List packages installed in more than one project",
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := newWalker().ScanAll(cmd.Context(), scanPaths(args), cfg.ScanOptions())
		if err != nil {
			return err
		}

		rep := duplicates.Analyze(res.Roots)
		log.WithField("roots", len(res.Roots)).Debugf("found %d duplicate packages", rep.TotalDuplicates)

		out := cmd.OutOrStdout()
		if flagJSON {
			return report.JSON(out, rep)
		}
		return report.Duplicates(out, rep)
	},
}

func init() {
	rootCmd.AddCommand(dupesCmd)
}
