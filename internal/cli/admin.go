package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/devora/internal/config"
	"github.com/mesh-intelligence/devora/internal/migrate"
	"github.com/mesh-intelligence/devora/internal/paths"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Convert a legacy projects.db into the document store",
		Long: "Migrate looks for projects.db in the data directory, then in the configuration\n" +
			"directory, and converts it when the data directory holds no projects yet. The\n" +
			"database is renamed with a .migrated suffix once its contents are written.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := migrate.Run(a.dirs.ConfigDir, a.dirs.DataDir,
				migrate.WithLogger(a.logger.With("component", "migrate")))
			if err != nil {
				return sysError(err)
			}
			out := struct {
				Outcome string `json:"outcome"`
				migrate.Result
			}{res.Outcome.String(), res}
			p := a.printer(cmd)
			return p.Result(out, func() {
				p.Field("outcome", res.Outcome)
				if res.Outcome == migrate.OutcomeMigrated {
					p.Field("source", res.Source)
					p.Field("projects", res.ProjectsMigrated)
					p.Field("items", res.ItemsMigrated)
					p.Field("todos", res.TodosMigrated)
					p.Field("file cards", res.FileCardsMigrated)
					p.Field("settings", res.SettingsMigrated)
				}
			})
		},
	}
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the directories in use and a summary of the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.store()
			if err != nil {
				return err
			}
			projects, err := s.ListProjects()
			if err != nil {
				return storeError(err)
			}
			out := map[string]any{
				"configDir":       a.env.ConfigDir,
				"dataDir":         a.env.DataDir,
				"projects":        len(projects),
				"migration":       a.env.Migration.Outcome.String(),
				"externalChanges": s.HasExternalChanges(),
			}
			if a.env.MigrationErr != nil {
				out["migrationError"] = a.env.MigrationErr.Error()
			}
			p := a.printer(cmd)
			return p.Result(out, func() {
				p.Field("config dir", a.env.ConfigDir)
				p.Field("data dir", a.env.DataDir)
				p.Field("projects", len(projects))
				p.Field("migration", a.env.Migration.Outcome)
				if a.env.MigrationErr != nil {
					p.Field("migration error", a.env.MigrationErr)
				}
			})
		},
	}
}

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change where devora keeps its data",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the resolved directories and settings",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				out := map[string]string{
					"configDir": a.dirs.ConfigDir,
					"dataDir":   a.dirs.DataDir,
					"logLevel":  a.dirs.Config.LogLevel,
				}
				p := a.printer(cmd)
				return p.Result(out, func() {
					p.Field("config dir", a.dirs.ConfigDir)
					p.Field("data dir", a.dirs.DataDir)
					p.Field("log level", a.dirs.Config.LogLevel)
				})
			},
		},
		&cobra.Command{
			Use:   "set-data-dir [path]",
			Short: "Move the data directory; with no path, restore the default",
			Long: "set-data-dir checks that the directory can be created and written, then\n" +
				"records it in config.yaml. Existing data is not copied.",
			Args: cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				var v paths.Validation
				if len(args) == 1 {
					var err error
					if v, err = paths.ValidateDataDir(args[0]); err != nil {
						return &exitError{code: exitUserError, err: err}
					}
				}
				if err := config.SetDataDir(a.dirs.ConfigDir, v.Path); err != nil {
					return sysError(err)
				}
				p := a.printer(cmd)
				return p.Result(v, func() {
					if v.Path == "" {
						p.Done("data directory reset to %s", a.dirs.ConfigDir)
						return
					}
					p.Done("data directory set to %s", v.Path)
					if v.DatabaseExists {
						fmt.Fprintln(p.w, "  a projects.db was found there and will be migrated on next start")
					}
				})
			},
		},
	)
	return cmd
}

func newWatchCmd(a *app) *cobra.Command {
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Reload the store whenever another process changes it",
		Long:  "Watch polls the index file and reports each reload until interrupted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if interval <= 0 {
				return userError("--interval must be positive")
			}
			s, err := a.store()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			p := a.printer(cmd)
			a.logger.Info("watching for external changes", "data_dir", s.DataDir(), "interval", interval)
			err = s.Watch(ctx, interval, func() {
				projects, err := s.ListProjects()
				if err != nil {
					a.logger.Warn("listing projects after reload", "error", err)
					return
				}
				at := time.Now()
				_ = p.Result(map[string]any{"reloadedAt": at, "projects": len(projects)}, func() {
					fmt.Fprintf(p.w, "%s reloaded, %d projects\n", at.Format(time.TimeOnly), len(projects))
				})
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 2*time.Second, "poll interval")
	return cmd
}
