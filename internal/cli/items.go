package cli

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/devora/pkg/types"
)

func newItemsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "items",
		Aliases: []string{"item"},
		Short:   "List and edit project items",
	}
	cmd.AddCommand(
		newItemsListCmd(a),
		newItemsAddCmd(a),
		newItemsUpdateCmd(a),
		newItemsRemoveCmd(a),
		newItemsReorderCmd(a),
	)
	return cmd
}

func newItemsListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list <project>",
		Short: "List a project's items in order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.store()
			if err != nil {
				return err
			}
			pr, err := resolveProject(s, args[0])
			if err != nil {
				return err
			}
			items, err := s.ListItems(pr.ID)
			if err != nil {
				return storeError(err)
			}
			p := a.printer(cmd)
			return p.Result(items, func() {
				rows := make([][]string, 0, len(items))
				for _, it := range items {
					rows = append(rows, []string{it.ID, string(it.Type), it.Title, it.Content})
				}
				p.Table([]string{"ID", "TYPE", "TITLE", "CONTENT"}, rows)
			})
		},
	}
}

// itemFlags are the item fields settable from the command line.
type itemFlags struct {
	title, content     string
	ideType, remoteIDE string
	agent, agentArgs   string
	agentEnv           string
	mode, cwd, host    string
}

func (f *itemFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.title, "title", "", "item title")
	fl.StringVar(&f.content, "content", "", "item content: note text, path, URL or command line")
	fl.StringVar(&f.ideType, "ide", "", "IDE used to open the item")
	fl.StringVar(&f.remoteIDE, "remote-ide", "", "remote IDE used to open the item")
	fl.StringVar(&f.agent, "agent", "", "coding agent: claude-code, opencode or gemini-cli")
	fl.StringVar(&f.agentArgs, "agent-args", "", "coding agent arguments")
	fl.StringVar(&f.agentEnv, "agent-env", "", "coding agent environment")
	fl.StringVar(&f.mode, "mode", "", "command mode: background or output")
	fl.StringVar(&f.cwd, "cwd", "", "command working directory")
	fl.StringVar(&f.host, "host", "", "command host")
}

func (f *itemFlags) agentType() (types.CodingAgentType, error) {
	if f.agent == "" {
		return "", nil
	}
	t, ok := types.ParseCodingAgentType(f.agent)
	if !ok {
		return "", userError("unknown coding agent %q", f.agent)
	}
	return t, nil
}

func (f *itemFlags) commandMode() (types.CommandMode, error) {
	if f.mode == "" {
		return "", nil
	}
	m, ok := types.ParseCommandMode(f.mode)
	if !ok {
		return "", userError("unknown command mode %q", f.mode)
	}
	return m, nil
}

func newItemsAddCmd(a *app) *cobra.Command {
	var (
		f        itemFlags
		itemType string
	)
	cmd := &cobra.Command{
		Use:   "add <project>",
		Short: "Add an item to a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, ok := types.ParseItemType(itemType)
			if !ok {
				return userError("%w %q", types.ErrInvalidItemType, itemType)
			}
			agent, err := f.agentType()
			if err != nil {
				return err
			}
			mode, err := f.commandMode()
			if err != nil {
				return err
			}
			s, err := a.store()
			if err != nil {
				return err
			}
			pr, err := resolveProject(s, args[0])
			if err != nil {
				return err
			}
			it, err := s.CreateItem(pr.ID, types.NewItem{
				Type:            t,
				Title:           f.title,
				Content:         f.content,
				IDEType:         f.ideType,
				RemoteIDEType:   f.remoteIDE,
				CodingAgentType: agent,
				CodingAgentArgs: f.agentArgs,
				CodingAgentEnv:  f.agentEnv,
				CommandMode:     mode,
				CommandCwd:      f.cwd,
				CommandHost:     f.host,
			})
			if err != nil {
				return storeError(err)
			}
			p := a.printer(cmd)
			return p.Result(it, func() { p.Done("added %s item %s", it.Type, it.ID) })
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&itemType, "type", string(types.ItemTypeNote), "item type: note, ide, file, url, remote-ide or command")
	return cmd
}

func newItemsUpdateCmd(a *app) *cobra.Command {
	var f itemFlags
	cmd := &cobra.Command{
		Use:   "update <item-id>",
		Short: "Change an item's fields",
		Long:  "Only the flags given are changed. An empty value clears the field.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var u types.ItemUpdate
			fl := cmd.Flags()
			for name, dst := range map[string]**string{
				"title":      &u.Title,
				"content":    &u.Content,
				"ide":        &u.IDEType,
				"remote-ide": &u.RemoteIDEType,
				"agent-args": &u.CodingAgentArgs,
				"agent-env":  &u.CodingAgentEnv,
				"cwd":        &u.CommandCwd,
				"host":       &u.CommandHost,
			} {
				if fl.Changed(name) {
					v, _ := fl.GetString(name)
					*dst = &v
				}
			}
			if fl.Changed("agent") {
				agent, err := f.agentType()
				if err != nil {
					return err
				}
				u.CodingAgentType = &agent
			}
			if fl.Changed("mode") {
				mode, err := f.commandMode()
				if err != nil {
					return err
				}
				u.CommandMode = &mode
			}

			s, err := a.store()
			if err != nil {
				return err
			}
			it, err := s.UpdateItem(args[0], u)
			if err != nil {
				return storeError(err)
			}
			if it == nil {
				return userError("item %q not found", args[0])
			}
			p := a.printer(cmd)
			return p.Result(it, func() { p.Done("updated item %s", it.ID) })
		},
	}
	f.register(cmd)
	return cmd
}

func newItemsRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <item-id>",
		Aliases: []string{"delete"},
		Short:   "Remove an item",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.store()
			if err != nil {
				return err
			}
			deleted, err := s.DeleteItem(args[0])
			if err != nil {
				return storeError(err)
			}
			if !deleted {
				return userError("item %q not found", args[0])
			}
			p := a.printer(cmd)
			return p.Result(map[string]any{"id": args[0], "deleted": true}, func() {
				p.Done("removed item %s", args[0])
			})
		},
	}
}

func newItemsReorderCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reorder <project> <item-id>...",
		Short: "Set the order of a project's items",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.store()
			if err != nil {
				return err
			}
			pr, err := resolveProject(s, args[0])
			if err != nil {
				return err
			}
			if err := s.ReorderItems(pr.ID, args[1:]); err != nil {
				return storeError(err)
			}
			items, err := s.ListItems(pr.ID)
			if err != nil {
				return storeError(err)
			}
			p := a.printer(cmd)
			return p.Result(items, func() { p.Done("reordered %d items", len(args)-1) })
		},
	}
}
