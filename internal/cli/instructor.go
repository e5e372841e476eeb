package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/teachsync/internal/model"
	"github.com/roach88/teachsync/internal/store"
)

// NewInstructorCommand creates the instructor command group.
func NewInstructorCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "instructor",
		Short: "Add, update or delete instructors",
	}
	cmd.AddCommand(newInstructorAddCommand(rootOpts))
	cmd.AddCommand(newInstructorUpdateCommand(rootOpts))
	cmd.AddCommand(newInstructorDeleteCommand(rootOpts))
	return cmd
}

func instructorFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("name", "", "display name")
	f.String("email", "", "email address, unique across instructors")
	f.String("department", "", "department")
	f.String("last-review", "", "last review date (YYYY-MM-DD, default today on add)")
	f.StringSlice("modules", nil, "owned module ids, comma separated")
}

func newInstructorAddCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "add <id>",
		Short:         "Add an instructor",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: storeRunner(rootOpts, func(cmd *cobra.Command, args []string, s *session) error {
			f := cmd.Flags()
			inst := model.Instructor{ID: args[0]}
			inst.Name, _ = f.GetString("name")
			inst.Email, _ = f.GetString("email")
			inst.Department, _ = f.GetString("department")
			inst.LastReview, _ = f.GetString("last-review")
			inst.Modules, _ = f.GetStringSlice("modules")

			if err := s.store.AddInstructor(cmd.Context(), inst); err != nil {
				return s.out.Fail(err)
			}
			return s.mutated(model.ActionCreated, "instructor", inst.ID, "")
		}),
	}
	instructorFlags(cmd)
	return cmd
}

func newInstructorUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update an instructor",
		Long: `Update the fields given on the command line. --modules replaces the
whole module list; pass --modules="" to release every module.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: storeRunner(rootOpts, func(cmd *cobra.Command, args []string, s *session) error {
			f := cmd.Flags()
			p := store.InstructorPatch{
				Name:       changedString(f, "name"),
				Email:      changedString(f, "email"),
				Department: changedString(f, "department"),
				LastReview: changedString(f, "last-review"),
				Modules:    changedStrings(f, "modules"),
			}
			if err := s.store.UpdateInstructor(cmd.Context(), args[0], p); err != nil {
				return s.out.Fail(err)
			}
			return s.mutated(model.ActionUpdated, "instructor", args[0], "")
		}),
	}
	instructorFlags(cmd)
	return cmd
}

func newInstructorDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "delete <id>",
		Short:         "Delete an instructor; its modules become unowned",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: storeRunner(rootOpts, func(cmd *cobra.Command, args []string, s *session) error {
			if err := s.store.DeleteInstructor(cmd.Context(), args[0]); err != nil {
				return s.out.Fail(err)
			}
			return s.mutated(model.ActionDeleted, "instructor", args[0], "")
		}),
	}
}
