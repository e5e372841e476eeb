package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/teachsync/internal/store"
	"github.com/roach88/teachsync/internal/tabular"
)

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	var preview bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the document to the workbook",
		Long: `Project the document into the workbook's five sheets (Instructors,
Modules, Software, SoftwareByOS, ChangeLog), replacing the workbook.

The format follows the workbook extension: .xlsx, or .db/.sqlite/.sqlite3.
With --preview the sheets are printed instead of written.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: storeRunner(rootOpts, func(cmd *cobra.Command, _ []string, s *session) error {
			if preview {
				return runExportPreview(cmd, s)
			}
			res, err := s.store.ExportTabular(cmd.Context())
			if err != nil {
				return s.out.Fail(err)
			}
			return s.out.Result(res, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "✓ Exported %s to %s\n", describeCounts(res.Counts), res.Path)
				return err
			})
		}),
	}

	cmd.Flags().BoolVar(&preview, "preview", false, "print the sheets instead of writing the workbook")
	return cmd
}

func runExportPreview(cmd *cobra.Command, s *session) error {
	sn, err := s.store.Reload(cmd.Context())
	if err != nil {
		return s.out.Fail(err)
	}
	wb := tabular.Project(sn.Document())
	return s.out.Result(wb, func(w io.Writer) error {
		return tabular.Render(w, wb)
	})
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Replace instructors and modules with the workbook's contents",
		Long: `Rebuild instructors and modules from the workbook's Instructors, Modules
and Software sheets. The audit log and the email and report configuration
are kept. Rows that cannot be used are reported and skipped; the import is
rejected as a whole if the result would be an invalid document.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: storeRunner(rootOpts, func(cmd *cobra.Command, _ []string, s *session) error {
			res, err := s.store.ImportTabular(cmd.Context())
			if err != nil {
				return s.out.Fail(err)
			}
			return s.out.Result(res, func(w io.Writer) error {
				fmt.Fprintf(w, "✓ Imported %s from %s\n", describeCounts(res.Counts), res.Path)
				for _, is := range res.Issues {
					fmt.Fprintf(w, "  ! %s\n", is)
				}
				for _, r := range res.Repairs {
					fmt.Fprintf(w, "  ~ %s\n", r)
				}
				return nil
			})
		}),
	}
}

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Compare the document with the workbook",
		Long: `Report entity counts on both sides and whether the workbook's source
sheets match a fresh export of the document. Exits 1 when they differ.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: storeRunner(rootOpts, func(cmd *cobra.Command, _ []string, s *session) error {
			st := s.store.SyncStatus(cmd.Context())
			if err := s.out.Result(st, func(w io.Writer) error {
				return writeStatus(w, st)
			}); err != nil {
				return err
			}
			if st.DocumentError != "" {
				return NewExitError(ExitCommandError, st.DocumentError)
			}
			if !st.InSync {
				return NewExitError(ExitFailure, "workbook out of sync")
			}
			return nil
		}),
	}
}

func writeStatus(w io.Writer, st store.SyncStatus) error {
	fmt.Fprintf(w, "Document: %s\n", st.DocumentPath)
	if st.DocumentError != "" {
		fmt.Fprintf(w, "  error: %s\n", st.DocumentError)
	} else {
		fmt.Fprintf(w, "  %s\n", describeCounts(st.Document))
	}

	fmt.Fprintf(w, "Workbook: %s\n", st.WorkbookPath)
	switch {
	case st.WorkbookError != "":
		fmt.Fprintf(w, "  error: %s\n", st.WorkbookError)
	case !st.WorkbookExists:
		fmt.Fprintln(w, "  not exported yet")
	default:
		fmt.Fprintf(w, "  %s, modified %s\n", describeCounts(st.Workbook), st.WorkbookMTime.Format("2006-01-02 15:04:05"))
	}

	if st.InSync {
		_, err := fmt.Fprintln(w, "✓ In sync")
		return err
	}
	_, err := fmt.Fprintln(w, "✗ Out of sync")
	return err
}

func describeCounts(c store.Counts) string {
	return fmt.Sprintf("%d instructors, %d modules, %d software", c.Instructors, c.Modules, c.Software)
}
