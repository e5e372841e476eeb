package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/teachsync/internal/document"
	"github.com/roach88/teachsync/internal/model"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid      bool              `json:"valid"`
	Violations []model.Violation `json:"violations,omitempty"`

	// Schema violations are only collected with --strict.
	Schema []model.Violation `json:"schema_violations,omitempty"`

	Instructors int `json:"instructors"`
	Modules     int `json:"modules"`
	Software    int `json:"software"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the document for structural problems",
		Long: `Check the document for missing sections, missing instructor emails and
software items without a name.

With --strict the document is also checked against the CUE schema, which
catches wrongly typed values such as negative years and malformed dates.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: storeRunner(rootOpts, func(cmd *cobra.Command, _ []string, s *session) error {
			return runValidate(cmd, s, strict)
		}),
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "also check value types against the schema")
	return cmd
}

func runValidate(cmd *cobra.Command, s *session, strict bool) error {
	sn, err := s.store.Reload(cmd.Context())
	if err != nil {
		return s.out.Fail(err)
	}
	doc := sn.Document()

	res := ValidationResult{
		Instructors: doc.Instructors.Len(),
		Modules:     doc.Modules.Len(),
		Software:    doc.SoftwareCount(),
	}
	res.Valid, res.Violations = sn.Validate()
	if strict {
		s.out.VerboseLog("Checking schema")
		res.Schema = document.CheckSchema(doc)
		if len(res.Schema) > 0 {
			res.Valid = false
		}
	}

	if !res.Valid {
		return outputValidationErrors(s.out, res)
	}
	return s.out.Result(res, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "✓ Document valid (%d instructors, %d modules, %d software)\n",
			res.Instructors, res.Modules, res.Software)
		return err
	})
}

func outputValidationErrors(out *OutputFormatter, res ValidationResult) error {
	all := append(append([]model.Violation{}, res.Violations...), res.Schema...)
	msg := fmt.Sprintf("document has %d violation(s)", len(all))

	if out.Format == "json" {
		_ = out.Error(string(model.CodeValidationFailed), msg, all)
	} else {
		fmt.Fprintf(out.Writer, "✗ Validation failed: %s\n", msg)
		for _, v := range all {
			if v.Path != "" {
				fmt.Fprintf(out.Writer, "  - %s: %s\n", v.Path, v.Message)
			} else {
				fmt.Fprintf(out.Writer, "  - %s\n", v.Message)
			}
		}
	}
	return NewExitError(ExitFailure, string(model.CodeValidationFailed)+": "+msg)
}
