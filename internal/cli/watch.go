package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/teachsync/internal/model"
	"github.com/roach88/teachsync/internal/store"
)

// WatchEvent is emitted after every reload.
type WatchEvent struct {
	Valid       bool              `json:"valid"`
	Instructors int               `json:"instructors"`
	Modules     int               `json:"modules"`
	Violations  []model.Violation `json:"violations,omitempty"`
	Exported    string            `json:"exported,omitempty"`
	Error       string            `json:"error,omitempty"`
}

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	var export bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Reload the document whenever it changes",
		Long: `Watch the document and report each change until interrupted. With
--export a valid document is also exported to the workbook after every
change.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: storeRunner(rootOpts, func(cmd *cobra.Command, _ []string, s *session) error {
			ctx := cmd.Context()
			err := s.store.Watch(ctx, func(sn *store.Snapshot, err error) {
				ev := WatchEvent{}
				if err != nil {
					ev.Error = err.Error()
				} else {
					doc := sn.Document()
					ev.Instructors = doc.Instructors.Len()
					ev.Modules = doc.Modules.Len()
					ev.Valid, ev.Violations = sn.Validate()
					if export && ev.Valid {
						if res, err := s.store.ExportTabular(ctx); err != nil {
							ev.Error = err.Error()
						} else {
							ev.Exported = res.Path
						}
					}
				}
				s.emitWatchEvent(ev)
			})
			if err != nil {
				return s.out.Fail(err)
			}
			return nil
		}),
	}

	cmd.Flags().BoolVar(&export, "export", false, "export to the workbook after each valid change")
	return cmd
}

func (s *session) emitWatchEvent(ev WatchEvent) {
	if s.out.Format == "json" {
		_ = s.out.Success(ev)
		return
	}
	w := s.out.Writer
	switch {
	case ev.Error != "":
		fmt.Fprintf(w, "✗ %s\n", ev.Error)
	case !ev.Valid:
		fmt.Fprintf(w, "✗ Reloaded with %d violation(s)\n", len(ev.Violations))
		for _, v := range ev.Violations {
			fmt.Fprintf(w, "  - %s\n", v.Message)
		}
	default:
		fmt.Fprintf(w, "✓ Reloaded: %d instructors, %d modules\n", ev.Instructors, ev.Modules)
		if ev.Exported != "" {
			fmt.Fprintf(w, "  exported to %s\n", ev.Exported)
		}
	}
}
