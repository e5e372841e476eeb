package cli

import (
	"fmt"
	"io"

	"github.com/spf13/pflag"
)

// MutationResult is the payload of every successful add, update or delete.
type MutationResult struct {
	Action   string `json:"action"` // "created" | "updated" | "deleted"
	Kind     string `json:"kind"`   // "instructor" | "module" | "software"
	ID       string `json:"id"`
	ModuleID string `json:"module_id,omitempty"`
}

func (s *session) mutated(action, kind, id, moduleID string) error {
	res := MutationResult{Action: action, Kind: kind, ID: id, ModuleID: moduleID}
	return s.out.Result(res, func(w io.Writer) error {
		target := fmt.Sprintf("%s %s", kind, id)
		if moduleID != "" {
			target += " in module " + moduleID
		}
		_, err := fmt.Fprintf(w, "✓ %s %s\n", pastTense(action), target)
		return err
	})
}

func pastTense(action string) string {
	switch action {
	case "created":
		return "Added"
	case "updated":
		return "Updated"
	case "deleted":
		return "Deleted"
	}
	return action
}

// Helpers that return a pointer only when the flag was set, so update
// commands change exactly the fields named on the command line.

func changedString(fs *pflag.FlagSet, name string) *string {
	if !fs.Changed(name) {
		return nil
	}
	v, _ := fs.GetString(name)
	return &v
}

func changedInt(fs *pflag.FlagSet, name string) *int {
	if !fs.Changed(name) {
		return nil
	}
	v, _ := fs.GetInt(name)
	return &v
}

func changedBool(fs *pflag.FlagSet, name string) *bool {
	if !fs.Changed(name) {
		return nil
	}
	v, _ := fs.GetBool(name)
	return &v
}

func changedStrings(fs *pflag.FlagSet, name string) *[]string {
	if !fs.Changed(name) {
		return nil
	}
	v, _ := fs.GetStringSlice(name)
	if v == nil {
		v = []string{}
	}
	return &v
}
