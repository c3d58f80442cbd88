package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/devora/pkg/types"
)

func newTodosCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "todos",
		Aliases: []string{"todo"},
		Short:   "Manage a project's checklist",
	}
	cmd.AddCommand(
		newTodosListCmd(a),
		newTodosAddCmd(a),
		newTodosCheckCmd(a, "done", true),
		newTodosCheckCmd(a, "undone", false),
		newTodosRemoveCmd(a),
		newTodosReorderCmd(a),
	)
	return cmd
}

func newTodosListCmd(a *app) *cobra.Command {
	var markdown bool
	cmd := &cobra.Command{
		Use:   "list <project>",
		Short: "List a project's todos in order",
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
			todos, err := s.ListTodos(pr.ID)
			if err != nil {
				return storeError(err)
			}
			p := a.printer(cmd)
			if markdown && !p.jsonMode {
				fmt.Fprintln(p.w, types.RenderTodoOutline(todos))
				return nil
			}
			out := struct {
				Todos    []types.TodoItem   `json:"todos"`
				Progress types.TodoProgress `json:"progress"`
			}{todos, types.ProgressOf(todos)}
			return p.Result(out, func() {
				for _, td := range todos {
					box := "[ ]"
					if td.Completed {
						box = p.ok.Sprint("[x]")
					}
					fmt.Fprintf(p.w, "%s%s %s  %s\n", strings.Repeat("  ", td.IndentLevel), box, td.Content, p.muted.Sprint(td.ID))
				}
				p.Field("progress", fmt.Sprintf("%d/%d (%.0f%%)", out.Progress.Completed, out.Progress.Total, out.Progress.Percentage))
			})
		},
	}
	cmd.Flags().BoolVar(&markdown, "markdown", false, "print the checklist as markdown")
	return cmd
}

func newTodosAddCmd(a *app) *cobra.Command {
	var indent int
	cmd := &cobra.Command{
		Use:   "add <project> <text>",
		Short: "Append a todo to a project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(args[1]) == "" {
				return userError("todo text must not be empty")
			}
			s, err := a.store()
			if err != nil {
				return err
			}
			pr, err := resolveProject(s, args[0])
			if err != nil {
				return err
			}
			td, err := s.CreateTodo(pr.ID, args[1], indent)
			if err != nil {
				return storeError(err)
			}
			p := a.printer(cmd)
			return p.Result(td, func() { p.Done("added todo %s", td.ID) })
		},
	}
	cmd.Flags().IntVar(&indent, "indent", 0, "nesting level")
	return cmd
}

func newTodosCheckCmd(a *app, use string, completed bool) *cobra.Command {
	short := "Mark a todo as done"
	if !completed {
		short = "Mark a todo as not done"
	}
	return &cobra.Command{
		Use:   use + " <todo-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.store()
			if err != nil {
				return err
			}
			td, err := s.UpdateTodo(args[0], types.TodoUpdate{Completed: &completed})
			if err != nil {
				return storeError(err)
			}
			if td == nil {
				return userError("todo %q not found", args[0])
			}
			p := a.printer(cmd)
			return p.Result(td, func() { p.Done("%s: %s", use, td.Content) })
		},
	}
}

func newTodosRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <todo-id>",
		Aliases: []string{"delete"},
		Short:   "Remove a todo",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.store()
			if err != nil {
				return err
			}
			deleted, err := s.DeleteTodo(args[0])
			if err != nil {
				return storeError(err)
			}
			if !deleted {
				return userError("todo %q not found", args[0])
			}
			p := a.printer(cmd)
			return p.Result(map[string]any{"id": args[0], "deleted": true}, func() {
				p.Done("removed todo %s", args[0])
			})
		},
	}
}

func newTodosReorderCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reorder <project> <todo-id>...",
		Short: "Set the order of a project's todos",
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
			if err := s.ReorderTodos(pr.ID, args[1:]); err != nil {
				return storeError(err)
			}
			todos, err := s.ListTodos(pr.ID)
			if err != nil {
				return storeError(err)
			}
			p := a.printer(cmd)
			return p.Result(todos, func() { p.Done("reordered %d todos", len(args)-1) })
		},
	}
}
