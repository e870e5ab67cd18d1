// cmd/root.go
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jackchuka/depsweep/internal/config"
	"github.com/jackchuka/depsweep/internal/logging"
	"github.com/jackchuka/depsweep/internal/model"
	"github.com/jackchuka/depsweep/internal/report"
	"github.com/jackchuka/depsweep/internal/scanner"
	"github.com/jackchuka/depsweep/internal/sizecache"
	"github.com/jackchuka/depsweep/tui"
)

var (
	cfgFile string
	cfg     *config.Config
	log     *logrus.Logger

	flagVerbose bool
	flagJSON    bool
	flagTUI     bool
	flagSort    string
)

var rootCmd = &cobra.Command{
	Use:   "depsweep [paths...]",
	Short: "Find node_modules directories and what they cost",
	Long: `
  ┏┳┓┏━┓┏━┓┏━┓╻ ╻┏━╸┏━╸┏━┓
   ┃┃┣╸ ┣━┛┗━┓┃╻┃┣╸ ┣╸ ┣━┛
  ╺┻┛┗━╸╹  ┗━┛┗┻┛┗━╸┗━╸╹   depsweep

  Walks your project directories, finds every dependency
  install directory, and reports how much disk each one uses
  and which packages are installed more than once.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		paths := scanPaths(args)
		opts := cfg.ScanOptions()
		walker := newWalker()

		if flagTUI {
			return tui.Run(walker, paths, opts)
		}

		res, err := walker.ScanAll(cmd.Context(), paths, opts)
		if err != nil {
			return err
		}
		switch flagSort {
		case "path":
			model.SortByPath(res.Roots)
		default:
			model.SortBySize(res.Roots)
		}

		out := cmd.OutOrStdout()
		if flagJSON {
			return report.JSON(out, res)
		}
		return report.Roots(out, res, time.Now())
	},
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/depsweep/config.yaml)")
	pf.IntP("depth", "d", 0, "maximum directory depth to descend (default from config, 10)")
	pf.StringSliceP("exclude", "e", nil, "glob patterns of directories to skip (added to config excludes)")
	pf.Bool("hidden", false, "descend into hidden directories")
	pf.Bool("parallel", true, "scan subdirectories concurrently")
	pf.Bool("follow-symlinks", false, "descend into symlinked directories")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "log unreadable paths and scan progress")
	pf.BoolVar(&flagJSON, "json", false, "print results as JSON")

	rootCmd.Flags().BoolVarP(&flagTUI, "tui", "t", false, "open the interactive view")
	rootCmd.Flags().StringVar(&flagSort, "sort", "size", "order install roots by size or path")
}

func initConfig() {
	if cfgFile == "" {
		cfgFile = config.DefaultConfigPath()
	}

	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Flags override the config file only when given
	flags := rootCmd.PersistentFlags()
	if flags.Changed("depth") {
		cfg.MaxDepth, _ = flags.GetInt("depth")
	}
	if excludes, _ := flags.GetStringSlice("exclude"); len(excludes) > 0 {
		cfg.ExcludePatterns = append(cfg.ExcludePatterns, excludes...)
	}
	if flags.Changed("hidden") {
		cfg.IncludeHidden, _ = flags.GetBool("hidden")
	}
	if flags.Changed("parallel") {
		cfg.Parallel, _ = flags.GetBool("parallel")
	}
	if flags.Changed("follow-symlinks") {
		cfg.FollowSymlinks, _ = flags.GetBool("follow-symlinks")
	}

	level := cfg.LogLevel
	if flagVerbose {
		level = logrus.DebugLevel.String()
	}
	log = logging.New(level, os.Stderr)
	cfg.Validate(log)
	log.WithField("config", cfgFile).Debug("config loaded")
}

// scanPaths resolves the directories to scan: args first, then the
// configured scan paths, then the working directory.
func scanPaths(args []string) []string {
	if len(args) > 0 {
		paths := make([]string, len(args))
		for i, a := range args {
			paths[i] = config.ExpandHome(a)
		}
		return paths
	}
	if len(cfg.ScanPaths) > 0 {
		return cfg.ScanPaths
	}
	return []string{"."}
}

func newWalker() *scanner.Walker {
	return scanner.NewWalker(sizecache.New(cfg.CacheTimeout), log)
}
