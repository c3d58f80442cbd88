package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/devora/pkg/types"
)

// storeError classifies an error returned by the store.
func storeError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, types.ErrProjectNotFound),
		errors.Is(err, types.ErrInvalidName),
		errors.Is(err, types.ErrInvalidItemType):
		return &exitError{code: exitUserError, err: err}
	default:
		return sysError(err)
	}
}

// resolveProject finds a project by id, or else by case-insensitive name.
func resolveProject(s types.Store, ref string) (*types.Project, error) {
	p, err := s.GetProject(ref)
	if err != nil {
		return nil, storeError(err)
	}
	if p != nil {
		return p, nil
	}
	all, err := s.ListProjects()
	if err != nil {
		return nil, storeError(err)
	}
	var matches []types.Project
	for _, c := range all {
		if strings.EqualFold(c.Name, ref) {
			matches = append(matches, c)
		}
	}
	switch len(matches) {
	case 0:
		return nil, userError("project %q: %w", ref, types.ErrProjectNotFound)
	case 1:
		p, err := s.GetProject(matches[0].ID)
		return p, storeError(err)
	default:
		return nil, userError("project name %q is ambiguous, use the id", ref)
	}
}

// matchProjects keeps the projects whose name matches the glob pattern.
// An empty pattern keeps everything.
func matchProjects(projects []types.Project, pattern string) ([]types.Project, error) {
	if pattern == "" {
		return projects, nil
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, userError("invalid --match pattern %q", pattern)
	}
	out := projects[:0:0]
	for _, p := range projects {
		if ok, _ := doublestar.Match(strings.ToLower(pattern), strings.ToLower(p.Name)); ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func newProjectsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "projects",
		Aliases: []string{"project", "p"},
		Short:   "List and edit projects",
	}
	cmd.AddCommand(
		newProjectsListCmd(a),
		newProjectsShowCmd(a),
		newProjectsCreateCmd(a),
		newProjectsUpdateCmd(a),
		newProjectsDeleteCmd(a),
	)
	return cmd
}

func newProjectsListCmd(a *app) *cobra.Command {
	var match string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects, most recently updated first",
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
			if projects, err = matchProjects(projects, match); err != nil {
				return err
			}
			p := a.printer(cmd)
			return p.Result(projects, func() {
				rows := make([][]string, 0, len(projects))
				for _, pr := range projects {
					rows = append(rows, []string{pr.ID, pr.Name, pr.UpdatedAt.Local().Format("2006-01-02 15:04")})
				}
				p.Table([]string{"ID", "NAME", "UPDATED"}, rows)
			})
		},
	}
	cmd.Flags().StringVar(&match, "match", "", "only projects whose name matches this glob")
	return cmd
}

func newProjectsShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <project>",
		Short: "Show a project with its items and todo progress",
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
			progress, err := s.TodoProgress(pr.ID)
			if err != nil {
				return storeError(err)
			}
			out := struct {
				*types.Project
				Progress types.TodoProgress `json:"todo_progress"`
			}{pr, progress}

			p := a.printer(cmd)
			return p.Result(out, func() {
				p.Field("id", pr.ID)
				p.Field("name", pr.Name)
				if pr.Description != "" {
					p.Field("description", pr.Description)
				}
				if pr.Metadata.GithubURL != "" {
					p.Field("github", pr.Metadata.GithubURL)
				}
				if pr.Metadata.CustomURL != "" {
					p.Field("url", pr.Metadata.CustomURL)
				}
				for _, wd := range pr.Metadata.WorkingDirs {
					p.Field("dir "+wd.Name, wd.Path)
				}
				p.Field("todos", fmt.Sprintf("%d/%d done", progress.Completed, progress.Total))
				p.Field("items", len(pr.Items))
				for _, it := range pr.Items {
					fmt.Fprintf(p.w, "  %s  %-10s %s\n", it.ID, it.Type, it.Title)
				}
			})
		},
	}
}

type projectFlags struct {
	description string
	githubURL   string
	customURL   string
}

func (f *projectFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.description, "description", "", "project description")
	cmd.Flags().StringVar(&f.githubURL, "github-url", "", "GitHub repository URL")
	cmd.Flags().StringVar(&f.customURL, "url", "", "custom project URL")
}

func newProjectsCreateCmd(a *app) *cobra.Command {
	var f projectFlags
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.store()
			if err != nil {
				return err
			}
			pr, err := s.CreateProject(types.NewProject{
				Name:        args[0],
				Description: f.description,
				Metadata:    types.ProjectMetadata{GithubURL: f.githubURL, CustomURL: f.customURL},
			})
			if err != nil {
				return storeError(err)
			}
			p := a.printer(cmd)
			return p.Result(pr, func() { p.Done("created project %s (%s)", pr.Name, pr.ID) })
		},
	}
	f.register(cmd)
	return cmd
}

func newProjectsUpdateCmd(a *app) *cobra.Command {
	var (
		f    projectFlags
		name string
	)
	cmd := &cobra.Command{
		Use:   "update <project>",
		Short: "Change a project's name, description or links",
		Long:  "Only the flags given are changed. An empty value clears a field; an empty name is ignored.",
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
			var u types.ProjectUpdate
			flags := cmd.Flags()
			if flags.Changed("name") {
				u.Name = &name
			}
			if flags.Changed("description") {
				u.Description = &f.description
			}
			if flags.Changed("github-url") || flags.Changed("url") {
				md := pr.Metadata
				if flags.Changed("github-url") {
					md.GithubURL = f.githubURL
				}
				if flags.Changed("url") {
					md.CustomURL = f.customURL
				}
				u.Metadata = &md
			}
			updated, err := s.UpdateProject(pr.ID, u)
			if err != nil {
				return storeError(err)
			}
			if updated == nil {
				return userError("project %q: %w", args[0], types.ErrProjectNotFound)
			}
			p := a.printer(cmd)
			return p.Result(updated, func() { p.Done("updated project %s", updated.Name) })
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&name, "name", "", "new project name")
	return cmd
}

func newProjectsDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <project>",
		Aliases: []string{"rm"},
		Short:   "Delete a project with its items, todos and file cards",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.store()
			if err != nil {
				return err
			}
			pr, err := resolveProject(s, args[0])
			if err != nil {
				return err
			}
			deleted, err := s.DeleteProject(pr.ID)
			if err != nil {
				return storeError(err)
			}
			p := a.printer(cmd)
			return p.Result(map[string]any{"id": pr.ID, "deleted": deleted}, func() {
				p.Done("deleted project %s", pr.Name)
			})
		},
	}
}
