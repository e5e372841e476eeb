package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/roach88/teachsync/internal/model"
	"github.com/roach88/teachsync/internal/store"
)

// NewSoftwareCommand creates the software command group.
func NewSoftwareCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "software",
		Short: "Add, update or delete a module's software",
	}
	cmd.AddCommand(newSoftwareAddCommand(rootOpts))
	cmd.AddCommand(newSoftwareUpdateCommand(rootOpts))
	cmd.AddCommand(newSoftwareDeleteCommand(rootOpts))
	return cmd
}

func softwareFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("version", "", "version (default "+store.DefaultVersion+" on add)")
	f.String("purpose", "", "what the module uses it for")
	f.String("category", "", "category, e.g. IDE")
	f.Bool("critical", false, "the module cannot run without it")
	f.String("notes", "", "free-form notes")
	f.String("os", "", "supported operating systems, comma separated (default: the module's)")
	f.String("last-verified", "", "last verification date (YYYY-MM-DD, default today)")
	f.String("verified-by", "", "who verified it")
}

// osListFlag reads --os. An unset flag means inherit.
func osListFlag(fs *pflag.FlagSet) model.OSList {
	if !fs.Changed("os") {
		return nil
	}
	spec, _ := fs.GetString("os")
	out := model.OSList{}
	for _, part := range strings.Split(spec, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func newSoftwareAddCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "add <module-id> <name>",
		Short:         "Add software to a module",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: storeRunner(rootOpts, func(cmd *cobra.Command, args []string, s *session) error {
			f := cmd.Flags()
			sw := model.SoftwareRequirement{Name: args[1], OSSupported: osListFlag(f)}
			sw.Version, _ = f.GetString("version")
			sw.Purpose, _ = f.GetString("purpose")
			sw.Category, _ = f.GetString("category")
			sw.Critical, _ = f.GetBool("critical")
			sw.Notes, _ = f.GetString("notes")
			sw.LastVerified, _ = f.GetString("last-verified")
			sw.VerifiedBy, _ = f.GetString("verified-by")

			if err := s.store.AddSoftware(cmd.Context(), args[0], sw); err != nil {
				return s.out.Fail(err)
			}
			return s.mutated(model.ActionCreated, "software", args[1], args[0])
		}),
	}
	softwareFlags(cmd)
	return cmd
}

func newSoftwareUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	var inheritOS bool

	cmd := &cobra.Command{
		Use:   "update <module-id> <name>",
		Short: "Update software in a module",
		Long: `Update the fields given on the command line. The verification date is
set to today unless --last-verified is given. --inherit-os drops the explicit
OS list so the item follows its module again.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: storeRunner(rootOpts, func(cmd *cobra.Command, args []string, s *session) error {
			f := cmd.Flags()
			if inheritOS && f.Changed("os") {
				return s.out.Usage("--os and --inherit-os are mutually exclusive")
			}
			p := store.SoftwarePatch{
				Name:         changedString(f, "rename"),
				Version:      changedString(f, "version"),
				Purpose:      changedString(f, "purpose"),
				Category:     changedString(f, "category"),
				Critical:     changedBool(f, "critical"),
				Notes:        changedString(f, "notes"),
				LastVerified: changedString(f, "last-verified"),
				VerifiedBy:   changedString(f, "verified-by"),
			}
			switch {
			case inheritOS:
				var inherit model.OSList
				p.OSSupported = &inherit
			case f.Changed("os"):
				explicit := osListFlag(f)
				p.OSSupported = &explicit
			}

			if err := s.store.UpdateSoftware(cmd.Context(), args[0], args[1], p); err != nil {
				return s.out.Fail(err)
			}
			name := args[1]
			if p.Name != nil {
				name = strings.TrimSpace(*p.Name)
			}
			return s.mutated(model.ActionUpdated, "software", name, args[0])
		}),
	}
	softwareFlags(cmd)
	cmd.Flags().String("rename", "", "new software name")
	cmd.Flags().BoolVar(&inheritOS, "inherit-os", false, "follow the module's OS list")
	return cmd
}

func newSoftwareDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "delete <module-id> <name>",
		Short:         "Remove software from a module",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: storeRunner(rootOpts, func(cmd *cobra.Command, args []string, s *session) error {
			if err := s.store.DeleteSoftware(cmd.Context(), args[0], args[1]); err != nil {
				return s.out.Fail(err)
			}
			return s.mutated(model.ActionDeleted, "software", args[1], args[0])
		}),
	}
}
