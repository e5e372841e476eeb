package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// InitResult reports whether init created the document.
type InitResult struct {
	Path    string `json:"path"`
	Created bool   `json:"created"`
}

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create an empty document if none exists",
		Long: `Create an empty document with instructors, modules and audit_log
sections. An existing document is left untouched.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: storeRunner(rootOpts, func(cmd *cobra.Command, _ []string, s *session) error {
			created, err := s.store.Init(cmd.Context())
			if err != nil {
				return s.out.Fail(err)
			}
			res := InitResult{Path: s.store.DocumentPath(), Created: created}
			return s.out.Result(res, func(w io.Writer) error {
				if created {
					_, err := fmt.Fprintf(w, "✓ Created %s\n", res.Path)
					return err
				}
				_, err := fmt.Fprintf(w, "%s already exists\n", res.Path)
				return err
			})
		}),
	}
}
