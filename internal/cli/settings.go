package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

func newSettingsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Read and write the global key/value settings",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List all settings",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := a.store()
				if err != nil {
					return err
				}
				settings, err := s.Settings()
				if err != nil {
					return storeError(err)
				}
				p := a.printer(cmd)
				return p.Result(settings, func() {
					keys := make([]string, 0, len(settings))
					for k := range settings {
						keys = append(keys, k)
					}
					slices.Sort(keys)
					rows := make([][]string, 0, len(keys))
					for _, k := range keys {
						rows = append(rows, []string{k, settings[k]})
					}
					p.Table([]string{"KEY", "VALUE"}, rows)
				})
			},
		},
		&cobra.Command{
			Use:   "get <key>",
			Short: "Print one setting",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := a.store()
				if err != nil {
					return err
				}
				v, ok, err := s.Setting(args[0])
				if err != nil {
					return storeError(err)
				}
				if !ok {
					return userError("setting %q is not set", args[0])
				}
				p := a.printer(cmd)
				return p.Result(map[string]string{args[0]: v}, func() { fmt.Fprintln(p.w, v) })
			},
		},
		&cobra.Command{
			Use:   "set <key> <value>",
			Short: "Set a setting, replacing any previous value",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := a.store()
				if err != nil {
					return err
				}
				if err := s.SetSetting(args[0], args[1]); err != nil {
					return storeError(err)
				}
				p := a.printer(cmd)
				return p.Result(map[string]string{args[0]: args[1]}, func() { p.Done("set %s", args[0]) })
			},
		},
		&cobra.Command{
			Use:     "rm <key>",
			Aliases: []string{"delete", "unset"},
			Short:   "Remove a setting",
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := a.store()
				if err != nil {
					return err
				}
				if err := s.DeleteSetting(args[0]); err != nil {
					return storeError(err)
				}
				p := a.printer(cmd)
				return p.Result(map[string]any{"key": args[0], "deleted": true}, func() { p.Done("removed %s", args[0]) })
			},
		},
	)
	return cmd
}
