package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSyncCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Replay changes queued while offline",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := app.Courses.Sync(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch {
			case result.Replayed == 0 && result.Remaining == 0:
				fmt.Fprintln(out, "Nothing to sync.")
			case result.Drained:
				fmt.Fprintf(out, "Synced %d queued change(s).\n", result.Replayed)
			default:
				fmt.Fprintf(out, "Synced %d queued change(s); %d still pending.\n",
					result.Replayed, result.Remaining)
			}
			return nil
		},
	}
}

func newSearchCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search courses, results in prerequisite order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ensureLoaded(app, cmd); err != nil {
				return err
			}
			results, err := app.Courses.Search(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(results) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No courses match.")
				return nil
			}
			state := app.Store.Snapshot()
			for i := range results {
				printCourseRow(cmd.OutOrStdout(), &results[i], state)
			}
			return nil
		},
	}
}
