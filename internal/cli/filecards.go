package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/devora/pkg/types"
)

func newCardsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "cards",
		Aliases: []string{"card"},
		Short:   "Manage the file cards pinned to a project's canvas",
	}
	cmd.AddCommand(newCardsListCmd(a), newCardsAddCmd(a), newCardsMoveCmd(a), newCardsRemoveCmd(a))
	return cmd
}

func newCardsListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list <project>",
		Short: "List a project's file cards",
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
			cards, err := s.ListFileCards(pr.ID)
			if err != nil {
				return storeError(err)
			}
			p := a.printer(cmd)
			return p.Result(cards, func() {
				rows := make([][]string, 0, len(cards))
				for _, c := range cards {
					rows = append(rows, []string{c.ID, c.Filename, c.FilePath, fmt.Sprintf("%g,%g", c.PositionX, c.PositionY), fmt.Sprint(c.ZIndex)})
				}
				p.Table([]string{"ID", "FILE", "PATH", "POSITION", "Z"}, rows)
			})
		},
	}
}

func newCardsAddCmd(a *app) *cobra.Command {
	var x, y float64
	cmd := &cobra.Command{
		Use:   "add <project> <path>",
		Short: "Pin a file to a project's canvas",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.store()
			if err != nil {
				return err
			}
			pr, err := resolveProject(s, args[0])
			if err != nil {
				return err
			}
			c, err := s.CreateFileCard(pr.ID, types.NewFileCard{
				Filename:  filepath.Base(args[1]),
				FilePath:  args[1],
				PositionX: x,
				PositionY: y,
			})
			if err != nil {
				return storeError(err)
			}
			p := a.printer(cmd)
			return p.Result(c, func() { p.Done("pinned %s as %s", c.Filename, c.ID) })
		},
	}
	cmd.Flags().Float64Var(&x, "x", 0, "horizontal position")
	cmd.Flags().Float64Var(&y, "y", 0, "vertical position")
	return cmd
}

func newCardsMoveCmd(a *app) *cobra.Command {
	var (
		x, y      float64
		z         int
		expanded  bool
		minimized bool
	)
	cmd := &cobra.Command{
		Use:   "move <card-id>",
		Short: "Change a file card's position or state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var u types.FileCardUpdate
			fl := cmd.Flags()
			if fl.Changed("x") {
				u.PositionX = &x
			}
			if fl.Changed("y") {
				u.PositionY = &y
			}
			if fl.Changed("z") {
				u.ZIndex = &z
			}
			if fl.Changed("expanded") {
				u.IsExpanded = &expanded
			}
			if fl.Changed("minimized") {
				u.IsMinimized = &minimized
			}
			s, err := a.store()
			if err != nil {
				return err
			}
			c, err := s.UpdateFileCard(args[0], u)
			if err != nil {
				return storeError(err)
			}
			if c == nil {
				return userError("file card %q not found", args[0])
			}
			p := a.printer(cmd)
			return p.Result(c, func() { p.Done("updated file card %s", c.ID) })
		},
	}
	fl := cmd.Flags()
	fl.Float64Var(&x, "x", 0, "horizontal position")
	fl.Float64Var(&y, "y", 0, "vertical position")
	fl.IntVar(&z, "z", 0, "stacking order")
	fl.BoolVar(&expanded, "expanded", false, "show the file contents")
	fl.BoolVar(&minimized, "minimized", false, "collapse the card")
	return cmd
}

func newCardsRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <card-id>",
		Aliases: []string{"delete"},
		Short:   "Unpin a file card",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.store()
			if err != nil {
				return err
			}
			deleted, err := s.DeleteFileCard(args[0])
			if err != nil {
				return storeError(err)
			}
			if !deleted {
				return userError("file card %q not found", args[0])
			}
			p := a.printer(cmd)
			return p.Result(map[string]any{"id": args[0], "deleted": true}, func() {
				p.Done("removed file card %s", args[0])
			})
		},
	}
}
