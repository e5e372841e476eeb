package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/teachsync/internal/model"
)

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List instructors or modules",
	}
	cmd.AddCommand(&cobra.Command{
		Use:           "instructors",
		Short:         "List instructors in document order",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: storeRunner(rootOpts, func(cmd *cobra.Command, _ []string, s *session) error {
			list, err := s.store.ListInstructors(cmd.Context())
			if err != nil {
				return s.out.Fail(err)
			}
			return s.out.Result(list, func(w io.Writer) error {
				return writeInstructorTable(w, list)
			})
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:           "modules",
		Short:         "List modules in document order",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: storeRunner(rootOpts, func(cmd *cobra.Command, _ []string, s *session) error {
			list, err := s.store.ListModules(cmd.Context())
			if err != nil {
				return s.out.Fail(err)
			}
			return s.out.Result(list, func(w io.Writer) error {
				return writeModuleTable(w, list)
			})
		}),
	})
	return cmd
}

func writeInstructorTable(w io.Writer, list []model.Instructor) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tDEPARTMENT\tMODULES")
	for _, inst := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			inst.ID, inst.Name, inst.Email, inst.Department, strings.Join(inst.Modules, ", "))
	}
	return tw.Flush()
}

func writeModuleTable(w io.Writer, list []model.Module) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCODE\tNAME\tYEAR\tSEMESTER\tINSTRUCTOR\tSOFTWARE")
	for _, m := range list {
		year := ""
		if m.Year != 0 {
			year = strconv.Itoa(m.Year)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%d\n",
			m.ID, m.Code, m.Name, year, m.Semester, m.InstructorID, len(m.Software))
	}
	return tw.Flush()
}
