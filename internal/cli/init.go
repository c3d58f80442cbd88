package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/devora/internal/config"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize devora storage",
		Long: "Create the configuration and data directories, write config.yaml if it is\n" +
			"missing, migrate a legacy database if one is found and open the store.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInit(cmd)
		},
	}
}

func (a *app) runInit(cmd *cobra.Command) error {
	path := filepath.Join(a.dirs.ConfigDir, config.FileName)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		cfg := config.Config{LogLevel: config.DefaultLogLevel}
		if a.dataDir != "" {
			cfg.DataDir = a.dataDir
		}
		if err := config.Save(a.dirs.ConfigDir, cfg); err != nil {
			return sysError(err)
		}
	} else if err != nil {
		return sysError(fmt.Errorf("checking %s: %w", path, err))
	}

	if _, err := a.store(); err != nil {
		return err
	}
	env := a.env
	out := map[string]any{
		"configDir": env.ConfigDir,
		"dataDir":   env.DataDir,
		"migration": env.Migration.Outcome.String(),
	}
	p := a.printer(cmd)
	return p.Result(out, func() {
		p.Field("config dir", env.ConfigDir)
		p.Field("data dir", env.DataDir)
		p.Field("migration", env.Migration.Outcome)
		p.Done("devora initialized")
	})
}
