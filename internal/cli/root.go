// Package cli implements the devora command-line interface on top of the
// document store.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/devora/internal/jsonstore"
	"github.com/mesh-intelligence/devora/internal/logging"
	"github.com/mesh-intelligence/devora/internal/startup"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// exitError attaches an exit code to an error.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// userError reports a mistake in the invocation.
func userError(format string, args ...any) error {
	return &exitError{code: exitUserError, err: fmt.Errorf(format, args...)}
}

// sysError reports a failure of the store or the file system.
func sysError(err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: exitSysError, err: err}
}

// exitCode maps an error returned by a command to the process exit code.
// Errors raised by cobra itself, such as unknown flags, are user errors.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitUserError
}

// app holds the state shared by the commands of one invocation.
type app struct {
	configDir string
	dataDir   string
	logLevel  string
	jsonMode  bool

	logger *slog.Logger
	dirs   startup.Dirs
	env    *startup.Env
}

// NewRootCmd creates the top-level "devora" command with global flags and
// all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "devora",
		Short: "Manage devora projects from the command line",
		Long: "devora reads and writes the project data of the devora organizer: projects,\n" +
			"items, todos and settings, with export, import and migration of legacy data.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.prepare(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configDir, "config-dir", "", "configuration directory (default: ~/.devora)")
	pf.StringVar(&a.dataDir, "data-dir", "", "data directory (default: from config.yaml, else the config directory)")
	pf.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error (default: from config.yaml)")
	pf.BoolVar(&a.jsonMode, "json", false, "output in JSON format")

	root.AddCommand(
		newVersionCmd(a),
		newInitCmd(a),
		newMigrateCmd(a),
		newStatusCmd(a),
		newProjectsCmd(a),
		newItemsCmd(a),
		newTodosCmd(a),
		newCardsCmd(a),
		newSettingsCmd(a),
		newExportCmd(a),
		newImportCmd(a),
		newConfigCmd(a),
		newWatchCmd(a),
	)
	return root
}

// Run executes the CLI with args and returns the exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	err := root.Execute()
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
	}
	return exitCode(err)
}

// Execute runs the root command on the process arguments and exits with
// the appropriate code.
func Execute() {
	os.Exit(Run(os.Args[1:], os.Stdout, os.Stderr))
}

// prepare resolves the directories and builds the logger. Commands that
// need the store call a.store.
func (a *app) prepare(cmd *cobra.Command) error {
	dirs, err := startup.Resolve(startup.Options{ConfigDir: a.configDir, DataDir: a.dataDir})
	if err != nil {
		return sysError(err)
	}
	a.dirs = dirs
	level := a.logLevel
	if level == "" {
		level = dirs.Config.LogLevel
	}
	a.logger = logging.NewLogger(logging.Options{
		Level:     level,
		Writer:    cmd.ErrOrStderr(),
		Component: "cli",
		JSON:      a.jsonMode,
	})
	return nil
}

// store opens the document store on first use, running the migration.
func (a *app) store() (*jsonstore.Store, error) {
	if a.env != nil {
		return a.env.Store, nil
	}
	env, err := startup.OpenDirs(a.dirs, a.logger)
	if err != nil {
		return nil, sysError(err)
	}
	a.env = env
	return env.Store, nil
}

func (a *app) close() {
	if a.env != nil {
		a.env.Store.Close()
		a.env = nil
	}
}
