package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jask/pacfrag/internal/config"
	"github.com/jask/pacfrag/internal/report"
	"github.com/jask/pacfrag/internal/service"
	"github.com/jask/pacfrag/internal/tui"
)

const skipSetup = "pacfrag/skip-setup"

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "pacfrag",
		Short:         "Find name fragments shared across political committees",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations[skipSetup] != "" {
				return nil
			}
			return a.setup(cmd)
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "config file (default $PACFRAG_CONFIG or ~/.config/pacfrag/config.toml)")
	pf.StringVar(&a.logLevel, "log-level", "info", "debug, info, warn, error or disabled")
	pf.BoolVar(&a.logJSON, "log-json", false, "log as JSON")

	root.AddCommand(
		runCmd(a),
		fetchCmd(a),
		analyzeCmd(a),
		showCmd(a),
		historyCmd(a),
		cacheCmd(a),
		configCmd(a),
	)
	return root
}

func today() string { return report.Day(time.Now()) }

func runCmd(a *app) *cobra.Command {
	var (
		day     string
		refresh bool
		out     string
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch (or reuse) the day's committee list, analyze it and publish the report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := report.ParseDay(day); err != nil {
				return err
			}
			st, err := a.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			if out == "" {
				out = a.cfg.Output.Dir
			}
			res, err := a.analyzer(st).Run(cmd.Context(), service.RunOptions{
				Day:       day,
				Refresh:   refresh,
				OutputDir: out,
			})
			if err != nil {
				return err
			}
			printResult(cmd, res)
			return nil
		},
	}
	cmd.Flags().StringVar(&day, "day", today(), "report day as YYYYMMDD")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore the cached snapshot and fetch again")
	cmd.Flags().StringVar(&out, "out", "", "output directory (default output.dir)")
	return cmd
}

func fetchCmd(a *app) *cobra.Command {
	var day string
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch the committee list and cache it without analyzing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := report.ParseDay(day); err != nil {
				return err
			}
			st, err := a.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			snap, entities, err := a.ingest(st).Snapshot(cmd.Context(), day, true)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cached %d committees as snapshot %s\n", len(entities), snap.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&day, "day", today(), "snapshot day as YYYYMMDD")
	return cmd
}

func analyzeCmd(a *app) *cobra.Command {
	var (
		input string
		day   string
		out   string
	)
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a committee list stored as a JSON file and publish the report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := report.ParseDay(day); err != nil {
				return err
			}
			st, err := a.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			if out == "" {
				out = a.cfg.Output.Dir
			}
			svc := &service.AnalyzeService{Runs: st.runs, FS: a.fs, LockPath: a.cfg.Cache.Path + ".lock"}
			res, err := svc.Run(cmd.Context(), service.RunOptions{Day: day, Input: input, OutputDir: out})
			if err != nil {
				return err
			}
			printResult(cmd, res)
			return nil
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "JSON array of committee records")
	cmd.Flags().StringVar(&day, "day", today(), "report day as YYYYMMDD")
	cmd.Flags().StringVar(&out, "out", "", "output directory (default output.dir)")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func showCmd(a *app) *cobra.Command {
	var (
		day string
		dir string
	)
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Browse a published report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if dir == "" {
				dir = a.cfg.Output.Dir
			}
			frags, receipts, err := report.ReadReport(a.fs, dir, day)
			if err != nil {
				return err
			}
			p := tea.NewProgram(tui.New(day, frags, receipts),
				tea.WithAltScreen(),
				tea.WithContext(cmd.Context()),
			)
			_, err = p.Run()
			return err
		},
	}
	cmd.Flags().StringVar(&day, "day", today(), "report day as YYYYMMDD")
	cmd.Flags().StringVar(&dir, "dir", "", "report directory (default output.dir)")
	return cmd
}

func historyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List recorded analysis runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := a.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			runs, err := st.runs.List(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "WHEN\tCOMMITTEES\tFRAGMENTS\tREFERENCED\tSOURCE\tOUTPUT")
			for _, r := range runs {
				fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%s\t%s\n",
					r.CreatedAt.Local().Format("2006-01-02 15:04"),
					r.EntityCount, r.FragmentCount, r.CommitteeCount, r.Source, r.OutputDir)
			}
			return w.Flush()
		},
	}
}

func cacheCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the snapshot cache",
	}
	var keep int
	prune := &cobra.Command{
		Use:   "prune",
		Short: "Delete snapshots older than --keep days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := a.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			m := &service.MaintenanceService{DB: st.db, Snapshots: st.snapshots}
			n, err := m.Prune(cmd.Context(), keep)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d snapshots\n", n)
			return nil
		},
	}
	prune.Flags().IntVar(&keep, "keep", 30, "days of snapshots to keep")
	cmd.AddCommand(prune)
	return cmd
}

func configCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the config file",
	}
	var force bool
	initCmd := &cobra.Command{
		Use:         "init",
		Short:       "Write the default config file",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipSetup: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := config.ResolvePath(a.configPath)
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			if err := config.Save(config.Default(), path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	cmd.AddCommand(initCmd)
	return cmd
}

func printResult(cmd *cobra.Command, res service.RunResult) {
	w := cmd.OutOrStdout()
	st := res.Report.Stats
	fmt.Fprintf(w, "%d committees, %d shared fragments across %d lengths (%s)\n",
		st.Entities, st.Fragments, st.Lengths, res.Source)
	fmt.Fprintf(w, "  %s\n  %s\n  %s\n  %s\n", res.Paths.Snapshot, res.Paths.Names, res.Paths.Ngrams, res.Paths.Receipts)
}
