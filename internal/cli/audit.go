package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/teachsync/internal/model"
)

// NewAuditCommand creates the audit command.
func NewAuditCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		limit      int
		moduleID   string
		instructor string
	)

	cmd := &cobra.Command{
		Use:           "audit",
		Short:         "Show the audit log, oldest first",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: storeRunner(rootOpts, func(cmd *cobra.Command, _ []string, s *session) error {
			if limit < 0 {
				return s.out.Usage("--limit must not be negative")
			}
			entries, err := s.store.AuditLog(cmd.Context())
			if err != nil {
				return s.out.Fail(err)
			}
			entries = filterAudit(entries, moduleID, instructor, limit)
			return s.out.Result(entries, func(w io.Writer) error {
				return writeAudit(w, entries, s.out.Verbose)
			})
		}),
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show only the last n entries")
	cmd.Flags().StringVar(&moduleID, "module", "", "only entries for this module")
	cmd.Flags().StringVar(&instructor, "instructor", "", "only entries for this instructor")
	return cmd
}

func filterAudit(entries []model.AuditEntry, moduleID, instructorID string, limit int) []model.AuditEntry {
	out := make([]model.AuditEntry, 0, len(entries))
	for _, e := range entries {
		if moduleID != "" && e.ModuleID != moduleID {
			continue
		}
		if instructorID != "" && e.InstructorID != instructorID {
			continue
		}
		out = append(out, e)
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}

func writeAudit(w io.Writer, entries []model.AuditEntry, withChanges bool) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No audit entries")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIMESTAMP\tACTION\tTARGET\tACTOR\tCHANGES")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", e.Timestamp, e.Action, auditTarget(e), e.Actor, len(e.Changes))
		if withChanges {
			for _, c := range e.Changes {
				fmt.Fprintf(tw, "\t\t  %s\t%q -> %q\t\n", c.Field, c.Old, c.New)
			}
		}
	}
	return tw.Flush()
}

func auditTarget(e model.AuditEntry) string {
	switch {
	case e.SoftwareName != "":
		return e.ModuleID + "/" + e.SoftwareName
	case e.ModuleID != "":
		return e.ModuleID
	case e.InstructorID != "":
		return e.InstructorID
	}
	return "*"
}
