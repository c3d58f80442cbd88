package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

const modulePath = "github.com/mesh-intelligence/devora"

// Version is set at build time with -ldflags "-X ...cli.Version=...".
var Version = "dev"

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the devora version",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			p := a.printer(cmd)
			info := map[string]string{"version": Version, "module": modulePath, "go": runtime.Version()}
			return p.Result(info, func() {
				fmt.Fprintf(p.w, "devora %s\nmodule: %s\n", Version, modulePath)
			})
		},
	}
}
