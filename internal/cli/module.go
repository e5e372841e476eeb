package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/teachsync/internal/model"
	"github.com/roach88/teachsync/internal/store"
	"github.com/roach88/teachsync/internal/tabular"
)

// NewModuleCommand creates the module command group.
func NewModuleCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "module",
		Short: "Add, update or delete modules",
	}
	cmd.AddCommand(newModuleAddCommand(rootOpts))
	cmd.AddCommand(newModuleUpdateCommand(rootOpts))
	cmd.AddCommand(newModuleDeleteCommand(rootOpts))
	return cmd
}

func moduleFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("code", "", "course code, unique across modules")
	f.String("name", "", "module name")
	f.String("description", "", "description")
	f.Int("year", 0, "teaching year")
	f.String("semester", "", "semester")
	f.String("os", "", `required operating systems, e.g. "Windows 11 (lab PCs), macOS"`)
	f.String("instructor", "", "owning instructor id")
}

func newModuleAddCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "add <id>",
		Short:         "Add a module",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: storeRunner(rootOpts, func(cmd *cobra.Command, args []string, s *session) error {
			f := cmd.Flags()
			m := model.Module{ID: args[0], Software: []model.SoftwareRequirement{}}
			m.Code, _ = f.GetString("code")
			m.Name, _ = f.GetString("name")
			m.Description, _ = f.GetString("description")
			m.Year, _ = f.GetInt("year")
			m.Semester, _ = f.GetString("semester")
			m.InstructorID, _ = f.GetString("instructor")
			osSpec, _ := f.GetString("os")
			m.OSRequired = tabular.ParseOSRequirements(osSpec)

			if err := s.store.AddModule(cmd.Context(), m); err != nil {
				return s.out.Fail(err)
			}
			return s.mutated(model.ActionCreated, "module", m.ID, "")
		}),
	}
	moduleFlags(cmd)
	return cmd
}

func newModuleUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a module",
		Long: `Update the fields given on the command line. --instructor moves
ownership to another instructor; pass --instructor="" to leave the module
unowned.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: storeRunner(rootOpts, func(cmd *cobra.Command, args []string, s *session) error {
			f := cmd.Flags()
			p := store.ModulePatch{
				Code:         changedString(f, "code"),
				Name:         changedString(f, "name"),
				Description:  changedString(f, "description"),
				Year:         changedInt(f, "year"),
				Semester:     changedString(f, "semester"),
				InstructorID: changedString(f, "instructor"),
			}
			if spec := changedString(f, "os"); spec != nil {
				reqs := tabular.ParseOSRequirements(*spec)
				if reqs == nil {
					reqs = []model.OSRequirement{}
				}
				p.OSRequired = &reqs
			}
			if err := s.store.UpdateModule(cmd.Context(), args[0], p); err != nil {
				return s.out.Fail(err)
			}
			return s.mutated(model.ActionUpdated, "module", args[0], "")
		}),
	}
	moduleFlags(cmd)
	return cmd
}

func newModuleDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "delete <id>",
		Short:         "Delete a module and remove it from its instructor",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: storeRunner(rootOpts, func(cmd *cobra.Command, args []string, s *session) error {
			if err := s.store.DeleteModule(cmd.Context(), args[0]); err != nil {
				return s.out.Fail(err)
			}
			return s.mutated(model.ActionDeleted, "module", args[0], "")
		}),
	}
}
