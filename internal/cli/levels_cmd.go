package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newLevelsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "levels",
		Short: "Show courses grouped into parallel levels",
		Long: "Fetches the authority's topological order and groups it into levels:\n" +
			"courses in the same level have no prerequisite relationship and can be\n" +
			"taken in any order once the previous level is complete.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ensureLoaded(app, cmd); err != nil {
				return err
			}

			plan, err := app.Courses.Levels(cmd.Context())
			if err != nil {
				return err
			}
			if plan.Cycle != nil {
				if len(plan.Cycle.Members) > 0 {
					return fmt.Errorf("the prerequisite graph contains a cycle: %s",
						strings.Join(plan.Cycle.Members, " -> "))
				}
				return fmt.Errorf("the prerequisite graph contains a cycle")
			}

			out := cmd.OutOrStdout()
			state := app.Store.Snapshot()
			for i, level := range plan.Levels {
				fmt.Fprintf(out, "%s\n", headerStyle.Render(fmt.Sprintf("Level %d", i+1)))
				for j := range level {
					printCourseRow(out, &level[j], state)
				}
			}
			for _, dep := range plan.Anomalies {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: order references unknown course %s\n", dep)
			}
			return nil
		},
	}
}
