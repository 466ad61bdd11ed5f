package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/coursepath/internal/client"
	"github.com/alexanderramin/coursepath/internal/domain"
	"github.com/alexanderramin/coursepath/internal/service"
	"github.com/alexanderramin/coursepath/internal/store"
	"github.com/spf13/cobra"
)

// ensureLoaded refreshes the catalog before commands that read it. Offline is
// tolerated when the store already holds a copy from this session.
func ensureLoaded(app *App, cmd *cobra.Command) error {
	err := app.Courses.Load(cmd.Context())
	if err == nil {
		return nil
	}
	var cerr *client.ConnectivityError
	if errors.As(err, &cerr) && len(app.Store.Snapshot().Courses) > 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning: authority unreachable, showing local data")
		return nil
	}
	return err
}

// reportMutation turns the service's typed failures into user-facing text.
// Queued changes are a soft outcome, not an error.
func reportMutation(cmd *cobra.Command, err error) error {
	if err == nil {
		return nil
	}
	var qerr *service.QueuedError
	if errors.As(err, &qerr) {
		fmt.Fprintln(cmd.OutOrStdout(), "You appear to be offline. The change was saved locally and will sync later (run 'coursepath sync').")
		return nil
	}
	var rerr *client.RemoteError
	if errors.As(err, &rerr) {
		switch rerr.Kind {
		case client.KindConflict:
			if deps, ok := rerr.Details["dependents"].([]any); ok && len(deps) > 0 {
				ids := make([]string, 0, len(deps))
				for _, d := range deps {
					if s, ok := d.(string); ok {
						ids = append(ids, s)
					}
				}
				return fmt.Errorf("other courses depend on this one (%s); remove them first or use --cascade", strings.Join(ids, ", "))
			}
			if cycle, ok := rerr.Details["cycle"].([]any); ok && len(cycle) > 0 {
				return fmt.Errorf("that dependency would create a cycle: %v", cycle)
			}
			return fmt.Errorf("the authority rejected the change: %s", rerr.Message)
		case client.KindInvalid:
			return fmt.Errorf("the authority rejected the change: %s", rerr.Message)
		}
	}
	return err
}

func newListCmd(app *App) *cobra.Command {
	var filter string
	var query string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List courses with their derived status",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !domain.ValidStatusFilters[filter] {
				return fmt.Errorf("invalid filter %q (all, completed, available, locked)", filter)
			}
			if err := ensureLoaded(app, cmd); err != nil {
				return err
			}

			f := domain.StatusFilter(filter)
			app.Store.SetState(store.Partial{Filter: &f, SearchQuery: &query})

			state := app.Store.Snapshot()
			courses := store.Filtered(state)
			if len(courses) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No courses match.")
				return nil
			}
			for i := range courses {
				printCourseRow(cmd.OutOrStdout(), &courses[i], state)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "all", "Status filter: all, completed, available, locked")
	cmd.Flags().StringVar(&query, "search", "", "Substring match against name and description")
	return cmd
}

func newShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <course>",
		Short: "Show one course and its prerequisites",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ensureLoaded(app, cmd); err != nil {
				return err
			}
			course, err := resolveCourse(app, args[0])
			if err != nil {
				return err
			}
			printCourseDetail(cmd.OutOrStdout(), course, app.Store.Snapshot())
			return nil
		},
	}
}

func newAddCmd(app *App) *cobra.Command {
	var name, description string
	var deps []string
	var interactive bool

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a course",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ensureLoaded(app, cmd); err != nil {
				return err
			}

			draft := domain.CourseDraft{
				Name:        name,
				Description: description,
			}
			if interactive {
				if err := runCourseForm(&draft, &deps); err != nil {
					return err
				}
			}
			resolved, err := resolveDeps(app, deps)
			if err != nil {
				return err
			}
			draft.Dependencies = resolved

			created, err := app.Courses.Create(cmd.Context(), draft)
			if err := reportMutation(cmd, err); err != nil {
				return err
			}
			if created != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Created %s (%s)\n", created.Name, created.DisplayID())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Course name")
	cmd.Flags().StringVar(&description, "desc", "", "Course description")
	cmd.Flags().StringSliceVar(&deps, "dep", nil, "Prerequisite course (id or name), repeatable")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Fill in the course via a form")
	return cmd
}

func newEditCmd(app *App) *cobra.Command {
	var name, description string
	var deps []string
	var interactive bool

	cmd := &cobra.Command{
		Use:   "edit <course>",
		Short: "Change a course's attributes or prerequisites",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ensureLoaded(app, cmd); err != nil {
				return err
			}
			course, err := resolveCourse(app, args[0])
			if err != nil {
				return err
			}

			draft := domain.CourseDraft{
				Name:         course.Name,
				Description:  course.Description,
				Dependencies: course.Dependencies,
			}
			if cmd.Flags().Changed("name") {
				draft.Name = name
			}
			if cmd.Flags().Changed("desc") {
				draft.Description = description
			}
			if cmd.Flags().Changed("dep") {
				resolved, err := resolveDeps(app, deps)
				if err != nil {
					return err
				}
				draft.Dependencies = resolved
			}
			if interactive {
				depNames := append([]string(nil), draft.Dependencies...)
				if err := runCourseForm(&draft, &depNames); err != nil {
					return err
				}
				resolved, err := resolveDeps(app, depNames)
				if err != nil {
					return err
				}
				draft.Dependencies = resolved
			}

			updated, err := app.Courses.Update(cmd.Context(), course.ID, draft)
			if err := reportMutation(cmd, err); err != nil {
				return err
			}
			if updated != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", updated.Name)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New course name")
	cmd.Flags().StringVar(&description, "desc", "", "New course description")
	cmd.Flags().StringSliceVar(&deps, "dep", nil, "Replacement prerequisite (id or name), repeatable")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Edit the course via a form")
	return cmd
}

func newRmCmd(app *App) *cobra.Command {
	var cascade bool

	cmd := &cobra.Command{
		Use:   "rm <course>",
		Short: "Delete a course",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ensureLoaded(app, cmd); err != nil {
				return err
			}
			course, err := resolveCourse(app, args[0])
			if err != nil {
				return err
			}
			if err := reportMutation(cmd, app.Courses.Delete(cmd.Context(), course.ID, cascade)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", course.Name)
			return nil
		},
	}

	cmd.Flags().BoolVar(&cascade, "cascade", false, "Also delete courses that depend on it")
	return cmd
}

func newDoneCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "done <course>",
		Short: "Toggle a course's completion flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ensureLoaded(app, cmd); err != nil {
				return err
			}
			course, err := resolveCourse(app, args[0])
			if err != nil {
				return err
			}
			if app.Courses.ToggleCompletion(course.ID) {
				fmt.Fprintf(cmd.OutOrStdout(), "Marked %s complete\n", course.Name)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Marked %s not complete\n", course.Name)
			}
			return nil
		},
	}
}

// resolveDeps maps dependency inputs (ids or names) to course ids.
func resolveDeps(app *App, inputs []string) ([]string, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	out := make([]string, 0, len(inputs))
	for _, in := range inputs {
		in = strings.TrimSpace(in)
		if in == "" {
			continue
		}
		course, err := resolveCourse(app, in)
		if err != nil {
			return nil, err
		}
		out = append(out, course.ID)
	}
	return out, nil
}
