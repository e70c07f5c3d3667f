package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sadopc/planr/internal/export"
	"github.com/sadopc/planr/internal/identity"
)

func newExportCmd(opts *rootOptions) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:       "export <csv|json|ics>",
		Short:     "Export your data",
		Long:      "csv writes tasks and focus sessions, json writes everything, ics writes plans as calendar events.",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"csv", "json", "ics"},
		RunE: func(cmd *cobra.Command, args []string) error {
			format := args[0]
			return withEnv(cmd.Context(), opts, func(e *env) error {
				path := outPath
				if path == "" {
					path = filepath.Join(".", fmt.Sprintf("planr-export-%s.%s", e.app.Calendar().Today(), format))
				}
				data := export.Data{
					Tasks:    e.app.Tasks.Items(),
					Notes:    e.app.Notes.Items(),
					Plans:    e.app.Plans.Items(),
					Sessions: e.app.Sessions.Items(),
				}
				var err error
				switch format {
				case "csv":
					err = export.ToCSV(data, path)
				case "json":
					err = export.ToJSON(data, identity.KeyID(e.ident.Current()), path)
				case "ics":
					err = export.ToICS(data.Plans, e.app.Calendar().Zone(), path)
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", path)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "output file (default ./planr-export-<date>.<format>)")
	return cmd
}
