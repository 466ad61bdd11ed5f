package cli

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/coursepath/internal/importer"
	"github.com/alexanderramin/coursepath/internal/service"
	"github.com/spf13/cobra"
)

func newImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Create courses from a JSON catalog file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := importer.LoadCatalog(args[0])
			if err != nil {
				return err
			}
			if errs := importer.ValidateCatalog(schema); len(errs) > 0 {
				for _, e := range errs {
					fmt.Fprintln(cmd.ErrOrStderr(), "error:", e)
				}
				return fmt.Errorf("catalog has %d validation error(s)", len(errs))
			}
			drafts, err := importer.Drafts(schema)
			if err != nil {
				return err
			}

			created, queued := 0, 0
			for _, draft := range drafts {
				_, err := app.Courses.Create(cmd.Context(), draft)
				var qerr *service.QueuedError
				if errors.As(err, &qerr) {
					queued++
					continue
				}
				if err := reportMutation(cmd, err); err != nil {
					return fmt.Errorf("importing %q: %w", draft.Name, err)
				}
				created++
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d course(s)\n", created)
			if queued > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%d change(s) saved locally; run 'coursepath sync' when online\n", queued)
			}
			return nil
		},
	}
}
