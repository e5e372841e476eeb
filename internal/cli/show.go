package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/teachsync/internal/model"
	"github.com/roach88/teachsync/internal/tabular"
)

// InstructorDetail is an instructor with the modules it owns.
type InstructorDetail struct {
	model.Instructor
	ModuleDetails []model.Module `json:"module_details"`
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show one instructor or module",
	}
	cmd.AddCommand(&cobra.Command{
		Use:           "instructor <id>",
		Short:         "Show an instructor and its modules",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: storeRunner(rootOpts, func(cmd *cobra.Command, args []string, s *session) error {
			sn, err := s.store.Reload(cmd.Context())
			if err != nil {
				return s.out.Fail(err)
			}
			inst, err := sn.GetInstructor(args[0])
			if err != nil {
				return s.out.Fail(err)
			}
			modules, err := sn.GetInstructorModuleDetails(args[0])
			if err != nil {
				return s.out.Fail(err)
			}
			detail := InstructorDetail{Instructor: inst, ModuleDetails: modules}
			return s.out.Result(detail, func(w io.Writer) error {
				return writeInstructorDetail(w, detail)
			})
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:           "module <id>",
		Short:         "Show a module and its software",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: storeRunner(rootOpts, func(cmd *cobra.Command, args []string, s *session) error {
			m, err := s.store.GetModule(cmd.Context(), args[0])
			if err != nil {
				return s.out.Fail(err)
			}
			return s.out.Result(m, func(w io.Writer) error {
				return writeModuleDetail(w, m)
			})
		}),
	})
	return cmd
}

func writeInstructorDetail(w io.Writer, d InstructorDetail) error {
	fmt.Fprintf(w, "%s  %s <%s>\n", d.ID, d.Name, d.Email)
	if d.Department != "" {
		fmt.Fprintf(w, "Department:  %s\n", d.Department)
	}
	if d.LastReview != "" {
		fmt.Fprintf(w, "Last review: %s\n", d.LastReview)
	}
	if len(d.ModuleDetails) == 0 {
		_, err := fmt.Fprintln(w, "No modules")
		return err
	}
	fmt.Fprintln(w)
	return writeModuleTable(w, d.ModuleDetails)
}

func writeModuleDetail(w io.Writer, m model.Module) error {
	title := m.Name
	if m.Code != "" {
		title = m.Code + " " + m.Name
	}
	fmt.Fprintf(w, "%s  %s\n", m.ID, title)
	if m.Description != "" {
		fmt.Fprintf(w, "%s\n", m.Description)
	}
	if m.InstructorID != "" {
		fmt.Fprintf(w, "Instructor: %s\n", m.InstructorID)
	}
	if len(m.OSRequired) > 0 {
		fmt.Fprintf(w, "OS:         %s\n", tabular.FormatOSRequirements(m.OSRequired))
	}
	if len(m.Software) == 0 {
		_, err := fmt.Fprintln(w, "No software")
		return err
	}

	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SOFTWARE\tVERSION\tCATEGORY\tCRITICAL\tOS\tVERIFIED")
	for i := range m.Software {
		sw := &m.Software[i]
		osNames := strings.Join(m.EffectiveOS(sw), ", ")
		if sw.OSSupported.IsZero() && osNames != "" {
			osNames += " (inherited)"
		}
		critical := ""
		if sw.Critical {
			critical = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			sw.Name, sw.Version, sw.Category, critical, osNames, sw.LastVerified)
	}
	return tw.Flush()
}
