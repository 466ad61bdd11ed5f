package cli

import (
	"github.com/alexanderramin/coursepath/internal/broadcast"
	"github.com/alexanderramin/coursepath/internal/service"
	"github.com/alexanderramin/coursepath/internal/store"
	"github.com/spf13/cobra"
)

// App holds the shared collaborators CLI commands run against. Presentations
// never reference each other directly: cross-pane highlighting goes through
// the Broadcast field.
type App struct {
	Courses   service.CourseService
	Store     *store.Store
	Broadcast *broadcast.Broadcaster
}

// NewRootCmd creates the top-level "coursepath" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "coursepath",
		Short: "Course prerequisite planner",
	}

	root.AddCommand(
		newListCmd(app),
		newShowCmd(app),
		newAddCmd(app),
		newEditCmd(app),
		newRmCmd(app),
		newDoneCmd(app),
		newImportCmd(app),
		newLevelsCmd(app),
		newSearchCmd(app),
		newSyncCmd(app),
		newUICmd(app),
	)

	return root
}
