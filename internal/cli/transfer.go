package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/devora/pkg/store"
	"github.com/mesh-intelligence/devora/pkg/types"
)

// exportSource returns the store export reads from: the configured one, or
// the existing store in dir when dir is set. The returned func releases it.
func (a *app) exportSource(dir, backend string) (types.Store, func(), error) {
	if dir == "" {
		if backend != "" {
			return nil, nil, userError("--from-backend requires --from")
		}
		s, err := a.store()
		return s, func() {}, err
	}
	b, err := types.ParseBackend(backend)
	if err != nil {
		return nil, nil, &exitError{code: exitUserError, err: err}
	}
	s, err := store.OpenExisting(types.Location{Backend: b, DataDir: dir}, store.WithLogger(a.logger))
	switch {
	case errors.Is(err, store.ErrNotFound):
		return nil, nil, &exitError{code: exitUserError, err: err}
	case err != nil:
		return nil, nil, sysError(err)
	}
	a.logger.Debug("exporting from another store", "data_dir", dir, "backend", b)
	return s, func() { s.Close() }, nil
}

func newExportCmd(a *app) *cobra.Command {
	var (
		refs        []string
		match       string
		output      string
		from        string
		fromBackend string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export projects with their items and file cards",
		Long: "Export writes the selected projects as a JSON document that import accepts.\n" +
			"Without --project or --match every project is exported. With --from the\n" +
			"projects are read from another store instead, such as a legacy projects.db\n" +
			"(--from-backend sqlite), which is left untouched.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, release, err := a.exportSource(from, fromBackend)
			if err != nil {
				return err
			}
			defer release()

			var ids []string
			if len(refs) > 0 || match != "" {
				ids = []string{}
				for _, ref := range refs {
					pr, err := resolveProject(s, ref)
					if err != nil {
						return err
					}
					ids = append(ids, pr.ID)
				}
				if match != "" {
					all, err := s.ListProjects()
					if err != nil {
						return storeError(err)
					}
					matched, err := matchProjects(all, match)
					if err != nil {
						return err
					}
					for _, pr := range matched {
						ids = append(ids, pr.ID)
					}
				}
			}

			data, err := s.Export(ids)
			if err != nil {
				return storeError(err)
			}
			p := a.printer(cmd)
			if output == "" || output == "-" {
				return p.JSON(data)
			}
			if err := types.WriteExportFile(output, data); err != nil {
				return sysError(err)
			}
			summary := map[string]any{
				"path":      output,
				"projects":  len(data.Projects),
				"items":     len(data.Items),
				"fileCards": len(data.FileCards),
			}
			return p.Result(summary, func() {
				p.Done("exported %d projects, %d items and %d file cards to %s",
					len(data.Projects), len(data.Items), len(data.FileCards), output)
			})
		},
	}
	fl := cmd.Flags()
	fl.StringArrayVar(&refs, "project", nil, "project id or name to export (repeatable)")
	fl.StringVar(&match, "match", "", "export projects whose name matches this glob")
	fl.StringVarP(&output, "output", "o", "", "write to this file instead of stdout")
	fl.StringVar(&from, "from", "", "read from the existing store in this directory")
	fl.StringVar(&fromBackend, "from-backend", "", "format of the --from store: json or sqlite (default json)")
	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	var replace bool
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import projects from an export file",
		Long: "Import merges the projects in the file into the store, skipping records whose\n" +
			"id already exists. With --replace every project is deleted first; settings are kept.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := types.ReadExportFile(args[0])
			if err != nil {
				return &exitError{code: exitUserError, err: err}
			}
			s, err := a.store()
			if err != nil {
				return err
			}
			mode := types.ImportMerge
			if replace {
				mode = types.ImportReplace
			}
			res, err := s.Import(data, mode)
			if err != nil {
				return storeError(err)
			}
			p := a.printer(cmd)
			return p.Result(res, func() {
				p.Done("imported %d projects, %d items and %d file cards (%d skipped)",
					res.ProjectsImported, res.ItemsImported, res.FileCardsImported, res.Skipped)
			})
		},
	}
	cmd.Flags().BoolVar(&replace, "replace", false, "delete all projects before importing")
	return cmd
}
