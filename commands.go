package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"trainload/internal/analysis"
	"trainload/internal/config"
	"trainload/internal/service"
)

func newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Fetch completed sessions from the coaching API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			env, err := openEnv(ctx, verbose)
			if err != nil {
				return err
			}
			defer env.Close()

			client, err := env.client(ctx, false)
			if err != nil {
				return err
			}
			svc := service.NewSyncService(client, env.db, env.cfg.Athlete, analysis.SystemClock{})

			progress := make(chan service.SyncProgress)
			done := make(chan struct{})
			out := cmd.OutOrStdout()
			go func() {
				defer close(done)
				for p := range progress {
					fmt.Fprintf(out, "\rpage %d: %d fetched, %d stored", p.Page, p.Fetched, p.Stored)
				}
			}()

			result, err := svc.SyncAll(ctx, progress)
			<-done
			fmt.Fprintln(out)
			if result != nil {
				printSyncResult(out, result)
			}
			return err
		},
	}
}

func printSyncResult(out io.Writer, r *service.SyncResult) {
	if r.Since.IsZero() {
		fmt.Fprintln(out, "Full sync")
	} else {
		fmt.Fprintf(out, "Sessions since %s\n", r.Since.Local().Format(time.RFC822))
	}
	fmt.Fprintf(out, "  fetched %d, stored %d, skipped %d\n", r.SessionsFetched, r.SessionsStored, r.SessionsSkipped)
	if r.TotalSessions > 0 {
		fmt.Fprintf(out, "  %d sessions stored since %s\n", r.TotalSessions, r.HistoryStart.Format(analysis.DateLayout))
	}
	for _, err := range r.Errors {
		fmt.Fprintf(out, "  ! %v\n", err)
	}
}

func newWeekCmd() *cobra.Command {
	var (
		offset int
		asJSON bool
		remote bool
	)

	cmd := &cobra.Command{
		Use:   "week",
		Short: "Print one week of load, monotony and strain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			env, err := openEnv(ctx, verbose)
			if err != nil {
				return err
			}
			defer env.Close()

			q := service.NewQueryService(env.db, analysis.SystemClock{})

			var view *service.WeekView
			if remote {
				client, err := env.client(ctx, false)
				if err != nil {
					return err
				}
				view, err = q.GetRemoteWeekView(ctx, client, offset)
				if err != nil {
					return err
				}
			} else {
				view, err = q.GetWeekView(ctx, offset)
				if err != nil {
					return err
				}
			}

			summary := view.Summary()
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(summary)
			}
			printWeek(cmd, summary, offset)
			return nil
		},
	}

	cmd.Flags().IntVar(&offset, "offset", 0, "weeks from the current week (negative = past)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	cmd.Flags().BoolVar(&remote, "remote", false, "read the week straight from the API load feed")
	return cmd
}

func printWeek(cmd *cobra.Command, s service.WeekSummary, requested int) {
	out := cmd.OutOrStdout()
	if s.Offset != requested {
		fmt.Fprintf(out, "(offset %d is out of range, showing %d)\n", requested, s.Offset)
	}
	fmt.Fprintf(out, "Week %s .. %s\n\n", s.Start, s.End)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "Date\tRunning\tOther\tTotal\t")
	for _, d := range s.Days {
		fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%.2f\t\n", d.Date, d.Running, d.Other, d.Total)
	}
	w.Flush()
	fmt.Fprintln(out)

	if !s.HasData {
		fmt.Fprintln(out, "No training load this week.")
	} else {
		fmt.Fprintf(out, "Total %.2f  Mean %.2f  SD %.2f  Monotony %.2f  Strain %.2f\n",
			s.Total, s.Mean, s.StandardDeviation, s.Monotony, s.Strain)
		if s.Alert != "" {
			fmt.Fprintf(out, "\n! %s\n", s.Alert)
		}
	}
	if s.Skipped > 0 {
		fmt.Fprintf(out, "%d record(s) with a bad day or load were left out\n", s.Skipped)
	}

	var nav []string
	if s.CanGoPrevious {
		nav = append(nav, fmt.Sprintf("--offset %d for the previous week", s.Offset-1))
	}
	if s.CanGoNext {
		nav = append(nav, fmt.Sprintf("--offset %d for the next week", s.Offset+1))
	}
	if len(nav) > 0 {
		fmt.Fprintf(out, "\n%s\n", strings.Join(nav, ", "))
	}
}

func newLogCmd() *cobra.Command {
	var (
		dayFlag  string
		duration time.Duration
		rpe      int
		running  bool
		name     string
		kind     string
	)

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Record a session by hand",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			day := analysis.CivilDate(time.Now())
			if dayFlag != "" {
				parsed, err := time.Parse(analysis.DateLayout, dayFlag)
				if err != nil {
					return fmt.Errorf("--day must be YYYY-MM-DD: %w", err)
				}
				day = parsed
			}

			var rating *int
			if cmd.Flags().Changed("rpe") {
				rating = &rpe
			}

			env, err := openEnv(ctx, verbose)
			if err != nil {
				return err
			}
			defer env.Close()

			session, err := service.NewLogService(env.db).LogSession(ctx, service.SessionInput{
				Day:             day,
				Name:            name,
				ActivityType:    kind,
				DurationSeconds: int(duration / time.Second),
				Rating:          rating,
				Running:         running,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Logged %s on %s: load %.2f (%s)\nid %s\n",
				session.ActivityType, session.ExecutionDay.Format(analysis.DateLayout),
				session.TRIMP, analysis.LoadZone(session.TRIMP), session.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&dayFlag, "day", "", "execution day, YYYY-MM-DD (default: today)")
	cmd.Flags().DurationVar(&duration, "duration", 0, "session duration, e.g. 45m or 1h10m")
	cmd.Flags().IntVar(&rpe, "rpe", 0, "perceived exertion, 0-10")
	cmd.Flags().BoolVar(&running, "running", false, "count the load as running load")
	cmd.Flags().StringVar(&name, "name", "", "session name")
	cmd.Flags().StringVar(&kind, "type", "", "activity type (default: Run or Other)")
	_ = cmd.MarkFlagRequired("duration")
	return cmd
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <session-id>",
		Short: "Remove a stored session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			env, err := openEnv(ctx, verbose)
			if err != nil {
				return err
			}
			defer env.Close()

			session, err := service.NewLogService(env.db).DeleteSession(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s on %s: load %.2f\n",
				session.ActivityType, session.ExecutionDay.Format(analysis.DateLayout), session.TRIMP)
			return nil
		},
	}
}

func newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Authorize trainload against the coaching API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			env, err := openEnv(ctx, verbose)
			if err != nil {
				return err
			}
			defer env.Close()

			if err := env.cfg.Validate(); err != nil {
				return fmt.Errorf("config %s: %w", configPath, err)
			}
			_, err = env.authenticate(ctx)
			return err
		},
	}
}

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the config file",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write an example config file if none exists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			created, err := config.CreateExample(configPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !created {
				fmt.Fprintf(out, "Config already exists at %s\n", configPath)
				return nil
			}
			fmt.Fprintf(out, "Wrote %s\n\nAdd your coaching API client_id and client_secret under [api].\n", configPath)
			return nil
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config, database and log paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "config    %s\n", configPath)
			fmt.Fprintf(out, "database  %s\n", dbPath)
			logPath := config.DefaultLogPath()
			if cfg, err := config.LoadFrom(configPath); err == nil {
				logPath = cfg.Log.File
			}
			fmt.Fprintf(out, "log       %s\n", logPath)
			return nil
		},
	})
	return configCmd
}
